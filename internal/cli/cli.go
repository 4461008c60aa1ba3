// Package cli implements the interactive Siteforge shell.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"siteforge/internal/archive"
	"siteforge/internal/data"
)

type CLI struct {
	pm        *data.ProjectManager
	fm        *data.FileManager
	exporter  *archive.Exporter
	exportDir string
	rl        *readline.Instance
	log       zerolog.Logger
}

func NewCLI(pm *data.ProjectManager, fm *data.FileManager, exporter *archive.Exporter, exportDir string, rl *readline.Instance, logger zerolog.Logger) *CLI {
	return &CLI{
		pm:        pm,
		fm:        fm,
		exporter:  exporter,
		exportDir: exportDir,
		rl:        rl,
		log:       logger,
	}
}

// Run reads and executes a single command line. It returns io.EOF (possibly
// wrapped) when the user asks to exit.
func (c *CLI) Run() error {
	line, err := c.rl.Readline()
	if err == readline.ErrInterrupt {
		return err
	} else if err == io.EOF {
		return err
	} else if err != nil {
		return err
	}

	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	c.log.Debug().Str("command", line).Msg("shell command")

	args := c.ParseArgs(line)
	return c.ExecuteCommand(args)
}

// ParseArgs splits a command line into arguments, honoring double quotes.
func (c *CLI) ParseArgs(input string) []string {
	var args []string
	var currentArg strings.Builder
	inQuotes := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if !inQuotes {
				if currentArg.Len() > 0 {
					args = append(args, currentArg.String())
					currentArg.Reset()
				}
			} else {
				currentArg.WriteRune(char)
			}
		default:
			currentArg.WriteRune(char)
		}
	}

	if currentArg.Len() > 0 {
		args = append(args, currentArg.String())
	}

	return args
}

func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command provided")
	}

	switch args[0] {
	case "projects":
		return c.handleProjects(args[1:])
	case "new":
		return c.handleNew(args[1:])
	case "open":
		return c.handleOpen(args[1:])
	case "dup":
		return c.handleDuplicate(args[1:])
	case "delproj":
		return c.handleDeleteProject(args[1:])
	case "add":
		return c.handleAdd(args[1:])
	case "mkdir":
		return c.handleMkdir(args[1:])
	case "del":
		return c.handleDelete(args[1:])
	case "ren":
		return c.handleRename(args[1:])
	case "move":
		return c.handleMove(args[1:])
	case "ls":
		return c.handleList(args[1:])
	case "cat":
		return c.handleCat(args[1:])
	case "set":
		return c.handleSetContent(args[1:])
	case "export":
		return c.handleExport(args[1:])
	case "help":
		return c.handleHelp(args[1:])
	case "exit", "quit":
		fmt.Println("Exiting...")
		if err := c.rl.Close(); err != nil {
			fmt.Printf("Error closing readline: %v\n", err)
		}
		return fmt.Errorf("exit requested: %w", io.EOF)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
