package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"longevity/internal/protocol"
)

var protocolCmd = &cobra.Command{
	Use:     "protocol",
	Aliases: []string{"p"},
	Short:   "Manage the daily protocol checklist",
}

var protocolListAll bool

var protocolListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show today's checklist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			out := cmd.OutOrStdout()
			m := e.tracker.Protocol

			if protocolListAll {
				fmt.Fprintln(out, "ID\tACTIVE\tNAME\tCATEGORY\tTIME\tFREQUENCY\tDOSAGE")
				for _, item := range m.Items() {
					fmt.Fprintf(out, "%s\t%t\t%s\t%s\t%s\t%s\t%s\n",
						shortID(item.ID), item.IsActive, item.Name, item.Category, item.Slot(), item.Frequency, item.Dosage)
				}
				return nil
			}

			today := m.Today()
			fmt.Fprintf(out, "%s: %d/%d done (%d%%)\n", today.Date, today.CompletedCount, today.TotalCount, today.Percent)
			groups := m.ItemsByTimeOfDay()
			for _, slot := range protocol.TimesOfDay {
				items := groups[slot]
				if len(items) == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%s\n", strings.ToUpper(string(slot)))
				for _, item := range items {
					mark := "[ ]"
					if today.Completed[item.ID] {
						mark = "[x]"
					}
					info, _ := item.Category.Info()
					line := fmt.Sprintf("  %s %s %s", mark, info.Icon, item.Name)
					if item.Dosage != "" {
						line += " (" + item.Dosage + ")"
					}
					fmt.Fprintf(out, "%s  %s\n", line, shortID(item.ID))
				}
			}
			return nil
		})
	},
}

var protocolLogCmd = &cobra.Command{
	Use:   "log <item>",
	Short: "Mark an item done for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			m := e.tracker.Protocol
			item, err := resolveItem(m, args[0])
			if err != nil {
				return err
			}
			if err := m.LogItem(item.ID); err != nil {
				return err
			}
			today := m.Today()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%d/%d)\n", item.Name, today.CompletedCount, today.TotalCount)
			return nil
		})
	},
}

var protocolUnlogCmd = &cobra.Command{
	Use:   "unlog <item>",
	Short: "Unmark an item for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			m := e.tracker.Protocol
			item, err := resolveItem(m, args[0])
			if err != nil {
				return err
			}
			if err := m.UnlogItem(item.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlogged %s\n", item.Name)
			return nil
		})
	},
}

var (
	itemName      string
	itemCategory  string
	itemTimeOfDay string
	itemFrequency string
	itemDosage    string
	itemNotes     string
)

var protocolAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a checklist item",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			item, err := e.tracker.Protocol.AddItem(protocol.Item{
				Name:      strings.TrimSpace(itemName),
				Category:  protocol.Category(strings.ToLower(itemCategory)),
				TimeOfDay: protocol.TimeOfDay(strings.ToLower(itemTimeOfDay)),
				Frequency: protocol.Frequency(strings.ToLower(itemFrequency)),
				Dosage:    itemDosage,
				Notes:     itemNotes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", item.Name, shortID(item.ID))
			return nil
		})
	},
}

var protocolEditCmd = &cobra.Command{
	Use:   "edit <item>",
	Short: "Change a checklist item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			m := e.tracker.Protocol
			item, err := resolveItem(m, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				item.Name = strings.TrimSpace(itemName)
			}
			if flags.Changed("category") {
				item.Category = protocol.Category(strings.ToLower(itemCategory))
			}
			if flags.Changed("time") {
				item.TimeOfDay = protocol.TimeOfDay(strings.ToLower(itemTimeOfDay))
			}
			if flags.Changed("frequency") {
				item.Frequency = protocol.Frequency(strings.ToLower(itemFrequency))
			}
			if flags.Changed("dosage") {
				item.Dosage = itemDosage
			}
			if flags.Changed("notes") {
				item.Notes = itemNotes
			}

			if err := m.UpdateItem(item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", item.Name)
			return nil
		})
	},
}

var protocolRemoveCmd = &cobra.Command{
	Use:   "remove <item>",
	Short: "Delete a checklist item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			m := e.tracker.Protocol
			item, err := resolveItem(m, args[0])
			if err != nil {
				return err
			}
			if err := m.RemoveItem(item.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", item.Name)
			return nil
		})
	},
}

var protocolToggleCmd = &cobra.Command{
	Use:   "toggle <item>",
	Short: "Activate or pause a checklist item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			m := e.tracker.Protocol
			item, err := resolveItem(m, args[0])
			if err != nil {
				return err
			}
			active, err := m.ToggleItemActive(item.ID)
			if err != nil {
				return err
			}
			state := "paused"
			if active {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", item.Name, state)
			return nil
		})
	},
}

var protocolTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "List or apply protocol templates",
}

var protocolTemplateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			for _, t := range e.tracker.Protocol.Templates() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d items\t%s\n", t.Name, len(t.Items), t.Description)
			}
			return nil
		})
	},
}

var protocolTemplateApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Replace the checklist with a template",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return withEnv(cmd, func(e *env) error {
			items, err := e.tracker.Protocol.ApplyTemplate(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s (%d items)\n", name, len(items))
			return nil
		})
	},
}

var protocolAdherenceCmd = &cobra.Command{
	Use:   "adherence",
	Short: "Show 7 and 30 day adherence",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(e *env) error {
			m := e.tracker.Protocol
			fmt.Fprintf(cmd.OutOrStdout(), "7-day: %d%%\n30-day: %d%%\n", m.Adherence7(), m.Adherence30())
			return nil
		})
	},
}

func init() {
	protocolListCmd.Flags().BoolVar(&protocolListAll, "all", false, "List every item including paused ones")

	for _, c := range []*cobra.Command{protocolAddCmd, protocolEditCmd} {
		c.Flags().StringVar(&itemName, "name", "", "Item name")
		c.Flags().StringVar(&itemCategory, "category", "", "supplement, exercise, nutrition, sleep, mindfulness or therapy")
		c.Flags().StringVar(&itemTimeOfDay, "time", "", "morning, afternoon, evening or anytime")
		c.Flags().StringVar(&itemFrequency, "frequency", "", "daily, weekly or monthly")
		c.Flags().StringVar(&itemDosage, "dosage", "", "Dosage, e.g. 5g")
		c.Flags().StringVar(&itemNotes, "notes", "", "Notes")
	}
	_ = protocolAddCmd.MarkFlagRequired("name")
	_ = protocolAddCmd.MarkFlagRequired("category")

	protocolTemplateCmd.AddCommand(protocolTemplateListCmd, protocolTemplateApplyCmd)
	protocolCmd.AddCommand(protocolListCmd, protocolLogCmd, protocolUnlogCmd, protocolAddCmd,
		protocolEditCmd, protocolRemoveCmd, protocolToggleCmd, protocolTemplateCmd, protocolAdherenceCmd)
	rootCmd.AddCommand(protocolCmd)
}
