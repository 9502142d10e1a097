package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"partydeck/internal/app"
	"partydeck/internal/config"
	"partydeck/internal/game"
	"partydeck/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "CreateFolder", "Serve").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// confirm guards destructive commands. --yes skips the prompt; without
// it, a non-interactive stdin refuses rather than assuming consent.
func confirm(cmd *cobra.Command, what string) (bool, error) {
	yes, _ := cmd.Flags().GetBool("yes")
	if yes {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to %s without --yes on a non-interactive terminal", what)
	}

	fmt.Printf("%s? [y/N] ", what)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func kindFlag(cmd *cobra.Command) (string, error) {
	kind, err := cmd.Flags().GetString("kind")
	if err != nil {
		return "", err
	}
	return kind, nil
}

var rootCmd = &cobra.Command{
	Use:   "partydeck",
	Short: "Party game presenter with image slideshows and quiz rounds",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Image Root: %s\n", cfg.Content.ImageRoot)
		fmt.Printf("Quiz Root:  %s\n", cfg.Content.QuizRoot)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Store:      %s\n", cfg.Content.Type)
		fmt.Printf("Image Root: %s\n", cfg.Content.ImageRoot)
		fmt.Printf("Quiz Root:  %s\n", cfg.Content.QuizRoot)
		fmt.Printf("Listen:     %s:%d\n", cfg.Server.Host, cfg.Server.Port)
		return nil
	},
}

// folder command
var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage content folders",
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		rawKind, err := kindFlag(cmd)
		if err != nil {
			return err
		}
		kind, err := app.ParseKind(rawKind)
		if err != nil {
			return err
		}

		a, err := newApp("ListFolders")
		if err != nil {
			return err
		}
		defer a.Close()

		folders := a.ListFolders(kind)
		if len(folders) == 0 {
			fmt.Println("No folders.")
			return nil
		}
		for _, f := range folders {
			fmt.Println(f.ID)
		}
		return nil
	},
}

var folderCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawKind, err := kindFlag(cmd)
		if err != nil {
			return err
		}
		kind, err := app.ParseKind(rawKind)
		if err != nil {
			return err
		}

		a, err := newApp("CreateFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		folder, err := a.CreateFolder(kind, args[0])
		if err != nil {
			return fmt.Errorf("creating folder: %w", err)
		}
		fmt.Printf("Created folder: %s\n", folder.ID)
		return nil
	},
}

var folderRmCmd = &cobra.Command{
	Use:   "rm FOLDER",
	Short: "Delete a folder and all its contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawKind, err := kindFlag(cmd)
		if err != nil {
			return err
		}
		kind, err := app.ParseKind(rawKind)
		if err != nil {
			return err
		}

		ok, err := confirm(cmd, fmt.Sprintf("Delete folder %q and all its contents", args[0]))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := newApp("DeleteFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteFolder(kind, args[0]); err != nil {
			return fmt.Errorf("deleting folder: %w", err)
		}
		fmt.Printf("Deleted folder: %s\n", args[0])
		return nil
	},
}

// image command
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage images in an image folder",
}

var imageListCmd = &cobra.Command{
	Use:   "list FOLDER",
	Short: "List a folder's images, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListImages")
		if err != nil {
			return err
		}
		defer a.Close()

		images, err := a.ListImages(args[0])
		if err != nil {
			return err
		}
		if len(images) == 0 {
			fmt.Println("No images.")
			return nil
		}
		for _, img := range images {
			fmt.Printf("%s  %8d  %s\n",
				time.UnixMilli(img.ModifiedAt).Format("2006-01-02 15:04:05"),
				img.SizeBytes,
				img.Name,
			)
		}
		return nil
	},
}

var imageAddCmd = &cobra.Command{
	Use:   "add FOLDER FILE",
	Short: "Copy an image file into a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AddImage")
		if err != nil {
			return err
		}
		defer a.Close()

		absPath, err := filepath.Abs(args[1])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		name, err := a.AddImage(args[0], absPath)
		if err != nil {
			return fmt.Errorf("adding image: %w", err)
		}
		fmt.Printf("Added image: %s\n", name)
		return nil
	},
}

var imageRmCmd = &cobra.Command{
	Use:   "rm FOLDER NAME",
	Short: "Delete an image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := confirm(cmd, fmt.Sprintf("Delete image %q", args[1]))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := newApp("DeleteImage")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteImage(args[0], args[1]); err != nil {
			return fmt.Errorf("deleting image: %w", err)
		}
		fmt.Printf("Deleted image: %s\n", args[1])
		return nil
	},
}

var imageRenameCmd = &cobra.Command{
	Use:   "rename FOLDER OLD NEW",
	Short: "Rename an image within its folder",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RenameImage")
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.RenameImage(args[0], args[1], args[2])
		if err != nil {
			return fmt.Errorf("renaming image: %w", err)
		}
		fmt.Printf("Renamed to: %s\n", name)
		return nil
	},
}

// quiz command
var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Manage quiz folders",
}

var quizShowCmd = &cobra.Command{
	Use:   "show FOLDER",
	Short: "Show a folder's quiz items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("QuizDocument")
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.QuizDocument(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Category: %s\n", doc.Category)
		if len(doc.Quizzes) == 0 {
			fmt.Println("No quiz items.")
			return nil
		}
		for _, q := range doc.Quizzes {
			fmt.Printf("%3d  %s\n     Q: %s\n     A: %s\n", q.Index, q.ID, q.Quiz, q.Answer)
		}
		return nil
	},
}

var quizSummaryCmd = &cobra.Command{
	Use:   "summary FOLDER",
	Short: "Show a folder's quiz summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("QuizSummary")
		if err != nil {
			return err
		}
		defer a.Close()

		printQuizSummary(cmd.OutOrStdout(), a.QuizSummary(args[0]))
		return nil
	},
}

// printQuizSummary renders the advisory folder preview. Preview holds
// at most the first two items; only their questions are shown.
func printQuizSummary(w io.Writer, s game.QuizSummary) {
	if !s.Exists {
		fmt.Fprintln(w, "No quiz document.")
		return
	}
	fmt.Fprintf(w, "Items:    %d\n", s.Count)
	fmt.Fprintf(w, "Modified: %s\n", time.UnixMilli(s.ModifiedAt).Format("2006-01-02 15:04:05"))
	for _, q := range s.Preview {
		fmt.Fprintf(w, "Preview:  %s\n", q.Quiz)
	}
}

var quizAddCmd = &cobra.Command{
	Use:   "add FOLDER QUESTION ANSWER",
	Short: "Append a quiz item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AddQuizItem")
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.AddQuizItem(args[0], args[1], args[2])
		if err != nil {
			return fmt.Errorf("adding quiz item: %w", err)
		}
		fmt.Printf("Added quiz item %s (index %d)\n", item.ID, item.Index)
		return nil
	},
}

var quizRmCmd = &cobra.Command{
	Use:   "rm FOLDER ITEM",
	Short: "Remove a quiz item and its image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := confirm(cmd, fmt.Sprintf("Remove quiz item %q", args[1]))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := newApp("RemoveQuizItem")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveQuizItem(args[0], args[1]); err != nil {
			return fmt.Errorf("removing quiz item: %w", err)
		}
		fmt.Printf("Removed quiz item: %s\n", args[1])
		return nil
	},
}

var quizImageCmd = &cobra.Command{
	Use:   "img",
	Short: "Manage quiz item images",
}

var quizImageAddCmd = &cobra.Command{
	Use:   "add FOLDER ITEM FILE",
	Short: "Attach an image to a quiz item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AddQuizImage")
		if err != nil {
			return err
		}
		defer a.Close()

		absPath, err := filepath.Abs(args[2])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		name, err := a.AddQuizImage(args[0], args[1], absPath)
		if err != nil {
			return fmt.Errorf("adding quiz image: %w", err)
		}
		fmt.Printf("Attached image: %s\n", name)
		return nil
	},
}

var quizImageRmCmd = &cobra.Command{
	Use:   "rm FOLDER ITEM",
	Short: "Remove a quiz item's image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteQuizImage")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteQuizImage(args[0], args[1]); err != nil {
			return fmt.Errorf("removing quiz image: %w", err)
		}
		fmt.Printf("Removed image for item: %s\n", args[1])
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local game server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.Config().Server, a.Store(), a.Hub(), a.Manager(), a.Logger())
		fmt.Printf("Serving on http://%s\n", srv.Addr())
		fmt.Printf("Presenter window:  ws://%s/ws/presenter\n", srv.Addr())
		fmt.Printf("Controller window: ws://%s/ws/controller\n", srv.Addr())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.Run(ctx)
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// folder subcommands
	folderCmd.PersistentFlags().StringP("kind", "k", "image", "Content kind: image or quiz")
	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderCreateCmd)
	folderCmd.AddCommand(folderRmCmd)
	folderRmCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	// image subcommands
	imageCmd.AddCommand(imageListCmd)
	imageCmd.AddCommand(imageAddCmd)
	imageCmd.AddCommand(imageRmCmd)
	imageRmCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	imageCmd.AddCommand(imageRenameCmd)

	// quiz subcommands
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizSummaryCmd)
	quizCmd.AddCommand(quizAddCmd)
	quizCmd.AddCommand(quizRmCmd)
	quizRmCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	quizCmd.AddCommand(quizImageCmd)
	quizImageCmd.AddCommand(quizImageAddCmd)
	quizImageCmd.AddCommand(quizImageRmCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(serveCmd)
}
