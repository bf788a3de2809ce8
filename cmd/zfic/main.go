package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kestrelgames/zfic/zcore"
	"github.com/kestrelgames/zfic/zvm"
)

func main() {
	root := &cobra.Command{
		Use:   "zfic",
		Short: "A terminal Z-machine interpreter",
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newVerifyCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCommand() *cobra.Command {
	var saveFile string

	cmd := &cobra.Command{
		Use:   "run <story>",
		Short: "Play a story file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyPath := args[0]
			image, err := os.ReadFile(storyPath)
			if err != nil {
				return fmt.Errorf("reading story file: %w", err)
			}

			if saveFile == "" {
				saveFile = defaultSaveFilename(storyPath)
			}

			host := &teaHost{}
			vm, err := zvm.New(image, host)
			if err != nil {
				return fmt.Errorf("loading story: %w", err)
			}

			m := newModel(vm, saveFile)
			p := tea.NewProgram(m)
			host.program = p

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running interpreter: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&saveFile, "save", "", "save file path (defaults to <story>.sav)")
	return cmd
}

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <story>",
		Short: "Check a story file's header checksum without playing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading story file: %w", err)
			}
			core, err := zcore.Load(image)
			if err != nil {
				return fmt.Errorf("loading story: %w", err)
			}
			fmt.Printf("Version: %d\n", core.Version)
			fmt.Printf("Release: %d\n", core.ReleaseNumber)
			if core.VerifyChecksum() {
				fmt.Println("Checksum: OK")
				return nil
			}
			fmt.Println("Checksum: MISMATCH")
			return fmt.Errorf("checksum verification failed")
		},
	}
}

func defaultSaveFilename(storyPath string) string {
	base := filepath.Base(storyPath)
	ext := filepath.Ext(base)
	if len(ext) >= 2 && (ext[1] == 'z' || ext[1] == 'Z') {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".sav"
}
