package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dompetku/internal/cli"
	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/store"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage categories",
		Long: `List, add, rename and delete the categories transactions are grouped by.
Renaming or deleting a category updates every transaction that uses it.`,
	}

	cmd.AddCommand(listCategoriesCmd(a))
	cmd.AddCommand(addCategoryCmd(a))
	cmd.AddCommand(updateCategoryCmd(a))
	cmd.AddCommand(deleteCategoryCmd(a))

	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			categories, err := l.categories.List()
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Color"),
				cli.TableHeaderStyle.Render("Icon"))

			for _, cat := range categories {
				name := cat.Name
				if cat.IsDefault() {
					name += cli.SubtleStyle.Render(" (default)")
				}
				color := cat.Color
				if color == "" {
					color = cli.SubtleStyle.Render("-")
				}
				fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n", cat.ID, name, cli.ColorSwatch(cat.Color), color, cat.Icon)
			}
			return w.Flush()
		},
	}
}

func addCategoryCmd(a *app) *cobra.Command {
	var input model.CreateCategoryInput

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			input.Name = args[0]
			cat, err := l.categories.Add(input)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (%s)", cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Color, "color", "", "hex color, e.g. #4F46E5")
	cmd.Flags().StringVar(&input.Icon, "icon", "", "icon name or emoji")
	return cmd
}

func updateCategoryCmd(a *app) *cobra.Command {
	var name, color, icon string

	cmd := &cobra.Command{
		Use:   "update <name-or-id>",
		Short: "Rename or recolor a category",
		Long: `Update a category. Renaming it also renames the category on every
transaction that uses it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			categories, err := l.categories.List()
			if err != nil {
				return err
			}
			existing := findCategory(categories, args[0])
			if existing == nil {
				return fmt.Errorf("category %q not found", args[0])
			}

			patch := model.CategoryPatch{ID: existing.ID}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("color") {
				patch.Color = &color
			}
			if cmd.Flags().Changed("icon") {
				patch.Icon = &icon
			}

			updated, report, err := l.categories.Update(patch)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Updated category %q", updated.Name)))
			printCascade(out, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new hex color")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	cmd.MarkFlagsOneRequired("name", "color", "icon")
	return cmd
}

func deleteCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Delete a category",
		Long: "Delete a category. Its transactions move to the '" + model.DefaultCategoryName + `' category,
which itself cannot be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			categories, err := l.categories.List()
			if err != nil {
				return err
			}
			target := findCategory(categories, args[0])
			if target == nil {
				return fmt.Errorf("category %q not found", args[0])
			}

			report, err := l.categories.Delete(target.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", target.Name)))
			printCascade(out, report)
			return nil
		},
	}
}

func printCascade(out io.Writer, report store.CascadeReport) {
	if len(report.Results) == 0 {
		return
	}

	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Moved %d transaction(s) from %q to %q", report.Updated(), report.From, report.To)))

	failed := report.Failed()
	if len(failed) == 0 {
		return
	}
	ids := make([]string, len(failed))
	for i, f := range failed {
		ids[i] = f.TransactionID
	}
	fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d transaction(s) could not be updated: %s", len(failed), strings.Join(ids, ", "))))
}
