package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/catalog"
)

// roomsCommand creates the rooms command listing the room-type catalog.
func (c *CLI) roomsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List the room-type catalog",
		Long: `List the room-type catalog.

Every room in a layout carries one of these types. The default area sizes
generated rooms; the label, icon, and color are copied onto each placed room
when it is generated or labeled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

			rows := [][]string{}
			for _, cfg := range catalog.All() {
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Color)).Render("■")
				rows = append(rows, []string{
					string(cfg.Type),
					cfg.Icon + " " + cfg.Label,
					fmt.Sprintf("%.0f m²", cfg.DefaultAreaM2),
					swatch + " " + cfg.Color,
				})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Type", "Room", "Default area", "Color").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					if col == 0 {
						return StyleHighlight
					}
					return StyleValue
				})

			fmt.Println(t.Render())
			printDetail("%d room types", len(catalog.All()))
			return nil
		},
	}
}
