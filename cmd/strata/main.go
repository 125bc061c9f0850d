// cmd/strata/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"strata/internal/config"
	"strata/internal/errors"
	"strata/internal/logging"
	"strata/internal/repo"
	"strata/shared/types"
)

var (
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata is a minimal local version control system",
	Long: `Strata versions files in a single working directory: a content-addressable
object store, a staging index, and a linear commit history with line diffs.
No branches, no merges, no remotes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// openRepo locates the repository above the current directory and opens it
// with its configuration.
func openRepo() (*repo.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	root, err := repo.FindRoot(cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	return repo.Open(root, cfg, logger)
}

func init() {
	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new strata repository",
		Long:  `Creates the repository layout in the current directory along with a commented default config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _ := cmd.Flags().GetString("backend")
			if backend != config.BackendFiles && backend != config.BackendBadger {
				return fmt.Errorf("unknown backend %q (want %s or %s)", backend, config.BackendFiles, config.BackendBadger)
			}

			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			if err := repo.Init(dir, backend); err != nil {
				if errors.IsAlreadyInitialized(err) {
					fmt.Println("Repository already initialized in", dir)
					return nil
				}
				return fmt.Errorf("initializing repository: %w", err)
			}

			fmt.Println("Initialized empty strata repository in", dir)
			return nil
		},
	}

	var addCmd = &cobra.Command{
		Use:   "add [files...]",
		Short: "Stage file contents for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			staged, err := r.Add(args)
			if err != nil {
				return fmt.Errorf("staging files: %w", err)
			}

			for _, e := range staged {
				fmt.Printf("staged %s (%s)\n", e.Path, e.Hash[:8])
			}
			return nil
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit [message]",
		Short: "Record the staged files as a new commit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")
			if message == "" && len(args) > 0 {
				message = args[0]
			}
			if message == "" {
				return fmt.Errorf("commit message required (pass it as an argument or with -m)")
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			hash, err := r.Commit(message)
			if err != nil {
				return fmt.Errorf("creating commit: %w", err)
			}

			fmt.Printf("[%s] %s\n", hash[:8], message)
			return nil
		},
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "Show commit history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			oneline, _ := cmd.Flags().GetBool("oneline")

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			yellow := color.New(color.FgYellow).SprintFunc()

			count := 0
			w := r.Log()
			for w.Next() {
				if limit > 0 && count >= limit {
					break
				}
				entry := w.Entry()
				if oneline {
					fmt.Printf("%s %s\n", yellow(entry.Hash[:8]), entry.Message)
				} else {
					if count > 0 {
						fmt.Println()
					}
					fmt.Println(yellow("commit " + entry.Hash))
					fmt.Println("Date:  ", entry.Timestamp)
					fmt.Println()
					fmt.Println("    " + entry.Message)
				}
				count++
			}
			if err := w.Err(); err != nil {
				return fmt.Errorf("walking history: %w", err)
			}

			if count == 0 {
				fmt.Println("No commits yet")
			}
			return nil
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show <commit>",
		Short: "Show a commit and its changes against the parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			cd, err := r.ShowDiff(args[0])
			if err != nil {
				return fmt.Errorf("showing commit: %w", err)
			}

			printColoredDiff(cd.Format())
			return nil
		},
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			entries, err := r.Status()
			if err != nil {
				return fmt.Errorf("getting status: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("No changes detected (working tree clean)")
				return nil
			}

			// Group changes by state
			var (
				staged    []shared.StatusEntry
				modified  []shared.StatusEntry
				untracked []shared.StatusEntry
				deleted   []shared.StatusEntry
			)
			for _, e := range entries {
				switch e.State {
				case shared.StateStaged:
					staged = append(staged, e)
				case shared.StateModified:
					modified = append(modified, e)
				case shared.StateUntracked:
					untracked = append(untracked, e)
				case shared.StateDeleted:
					deleted = append(deleted, e)
				}
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			blue := color.New(color.FgBlue).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Printf("\nChanges in working tree:\n\n")

			if len(staged) > 0 {
				fmt.Println("Staged for commit:")
				fmt.Println("  (use \"strata commit <message>\" to record them)")
				for _, e := range staged {
					fmt.Printf("\t%s %s\n", green("✓"), e.Path)
				}
				fmt.Println()
			}

			if len(modified) > 0 {
				fmt.Println("Modified files:")
				fmt.Println("  (use \"strata add <file>...\" to stage the new content)")
				for _, e := range modified {
					fmt.Printf("\t%s %s\n", yellow("M"), e.Path)
				}
				fmt.Println()
			}

			if len(untracked) > 0 {
				fmt.Println("Untracked files:")
				fmt.Println("  (use \"strata add <file>...\" to start tracking them)")
				for _, e := range untracked {
					fmt.Printf("\t%s %s\n", blue("?"), e.Path)
				}
				fmt.Println()
			}

			if len(deleted) > 0 {
				fmt.Println("Deleted files:")
				for _, e := range deleted {
					fmt.Printf("\t%s %s\n", red("D"), e.Path)
				}
				fmt.Println()
			}

			return nil
		},
	}

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check repository integrity",
		Long:  `Walks the commit chain from the head and checks that every commit decodes and every referenced blob exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			report, err := r.Verify()
			if err != nil {
				return fmt.Errorf("verifying repository: %w", err)
			}

			fmt.Printf("commits: %d\n", report.Commits)
			fmt.Printf("reachable blobs: %d\n", report.Blobs)
			fmt.Printf("stored objects: %d\n", report.Objects)

			if !report.Ok() {
				red := color.New(color.FgRed).SprintFunc()
				for _, p := range report.Problems {
					fmt.Printf("%s %s\n", red("problem:"), p)
				}
				return fmt.Errorf("found %d problem(s)", len(report.Problems))
			}

			fmt.Println("No problems found")
			return nil
		},
	}

	initCmd.Flags().String("backend", config.BackendFiles, "Storage backend (files or badger)")
	commitCmd.Flags().StringP("message", "m", "", "Commit message")
	logCmd.Flags().IntP("limit", "n", 0, "Stop after this many commits (0 means all)")
	logCmd.Flags().Bool("oneline", false, "One line per commit")

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(verifyCmd)
}

func printColoredDiff(diff string) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	header := color.New(color.FgCyan)

	for _, line := range strings.Split(diff, "\n") {
		if len(line) == 0 {
			fmt.Println()
			continue
		}

		switch {
		case strings.HasPrefix(line, "commit "),
			strings.HasPrefix(line, "diff --strata"),
			strings.HasPrefix(line, "new file"):
			header.Println(line)
		case strings.HasPrefix(line, "+ "):
			added.Println(line)
		case strings.HasPrefix(line, "- "):
			removed.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
