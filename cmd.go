package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
)

// wraps argument validation so bad input is reported as a usage error
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

func SetupCommands(a *App) *cobra.Command {
	variant := string(a.cfg.Variant)

	// root command
	rootCmd := &cobra.Command{
		Use:           "apptbook",
		Short:         "Manage appointments stored in a flat text file",
		Args:          usageArgs(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.HasParent() {
				return nil
			}
			a.cfg.Variant = Variant(variant)
			return a.Open()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfg.Path, "file", a.cfg.Path, "backing file (default appointments.txt, or appointments.db for sqlite)")
	flags.StringVar(&variant, "variant", variant, "record layout: booking or planner")
	flags.StringVar(&a.cfg.Backend, "backend", a.cfg.Backend, "storage backend: file or sqlite")

	// command for adding a new appointment
	addCmd := &cobra.Command{
		Use:   "add <client> <service> <staff> <date> <time> | <name> <date> <time> <category>",
		Short: "Add an appointment",
		Long: "Add an appointment. The booking variant takes client, service, staff, date and time\n" +
			"and refuses a staff member who is already booked at that date and time.\n" +
			"The planner variant takes name, date (YYYY-MM-DD), time (HH:MM) and category.",
		Args: usageArgs(cobra.RangeArgs(4, 5)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.AddAppointment(args)
		},
	}

	// command for listing appointments, optionally filtered
	listCmd := &cobra.Command{
		Use:   "list [search]",
		Short: "List appointments",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var term string
			if len(args) > 0 {
				term = args[0]
			}

			return a.ListAppointments(term)
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search appointments",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Search(args[0])
		},
	}

	// command for deleting appointments
	deleteCmd := &cobra.Command{
		Use:   "delete <client> <date> <time> | <index>",
		Short: "Delete an appointment",
		Long: "Delete appointments. The booking variant removes every appointment of the client\n" +
			"at that date and time. The planner variant removes the entry at the given\n" +
			"position of the list.",
		Args: usageArgs(cobra.RangeArgs(1, 3)),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			a.cfg.Variant = Variant(variant)
			if len(args) > 0 || a.Open() != nil || a.cfg.Variant != VariantBooking {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}

			appts, err := a.book.List()
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			var clients []string
			for _, appt := range appts {
				if !slices.Contains(clients, appt.Name) {
					clients = append(clients, appt.Name)
				}
			}
			return clients, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DeleteAppointment(args)
		},
	}

	// command for editing the appointment at a list position
	var patch Appointment
	editCmd := &cobra.Command{
		Use:   "edit <index>",
		Short: "Edit an appointment, leaving unset fields unchanged",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintln(a.out, "Invalid number.")
				return nil
			}

			return a.EditAppointment(index, patch)
		},
	}
	editCmd.Flags().StringVar(&patch.Name, "name", "", "new client or name")
	editCmd.Flags().StringVar(&patch.Service, "service", "", "new service")
	editCmd.Flags().StringVar(&patch.Staff, "staff", "", "new staff member")
	editCmd.Flags().StringVar(&patch.Date, "date", "", "new date")
	editCmd.Flags().StringVar(&patch.Time, "time", "", "new time")
	editCmd.Flags().StringVar(&patch.Category, "category", "", "new category")

	// command for appointments in the next few days
	var days int
	upcomingCmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show appointments in the next days",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("%w: --days must be at least 1", errUsage)
			}

			return a.ShowUpcoming(days)
		},
	}
	upcomingCmd.Flags().IntVar(&days, "days", a.cfg.UpcomingDays, "window in days")

	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu; changes are written on Save or Exit",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.RunMenu()
		},
	}

	// command for importing appointments from a remote API
	importCmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Import appointments from a remote API",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Import(args[0])
		},
	}

	// add commands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(upcomingCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(importCmd)

	return rootCmd
}
