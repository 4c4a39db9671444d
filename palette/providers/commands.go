package providers

import (
	"context"

	"taskdeck/cmd"
	"taskdeck/palette"
)

const (
	CommandsProviderID       = "commands"
	commandsProviderPriority = 30
)

// NewCommandProvider lists the commands of registry that are available in
// the palette context. Navigation commands are left to the navigation
// provider and hidden commands never show.
func NewCommandProvider(registry *cmd.CommandRegistry) palette.Provider {
	return palette.Provider{
		ID:       CommandsProviderID,
		Label:    "Commands",
		Priority: commandsProviderPriority,
		Search: func(ctx context.Context, query string, pc palette.Context) ([]palette.Result, error) {
			var out []palette.Result
			for command := range registry.Commands() {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if cmd.IsHiddenCategory(command.Category) || command.Category == cmd.CategoryNavigation {
					continue
				}
				if !command.Available(pc) {
					continue
				}

				fields := append([]field{
					{text: command.Title, weight: 100, min: 0.3},
					{text: command.Description, weight: 50, min: 0.8},
				}, keywordFields(command.Keywords, 80, 0.8)...)
				score := bestScore(query, 1, fields...)
				if score <= 0 {
					continue
				}
				out = append(out, commandResult(command, score))
			}
			return out, nil
		},
	}
}

func commandResult(command *cmd.Command, score float64) palette.Result {
	subtitle := command.Description
	if command.Shortcut != "" {
		subtitle += " (" + command.Shortcut + ")"
	}
	return palette.Result{
		ID:       "cmd:" + string(command.ID),
		Title:    command.Title,
		Subtitle: subtitle,
		Group:    string(command.Category),
		Score:    score,
		OnSelect: func(pc palette.Context) error {
			return command.Run(pc)
		},
	}
}
