package cli

import (
	"fmt"
	"sort"
)

var commandHelp = map[string]string{
	"projects": "projects - List all projects; the selected one is marked with *",
	"new":      "new <name> [html|php] - Create a project and select it",
	"open":     "open <project-id> - Select a project",
	"dup":      "dup <project-id> - Duplicate a project with fresh file ids",
	"delproj":  "delproj <project-id> - Delete a project and all its files",
	"add":      "add <parent-id|root> <name> [content] - Add a file under a folder",
	"mkdir":    "mkdir <parent-id|root> <name> - Add a folder",
	"del":      "del <file-id> - Delete a file, or a folder and everything in it",
	"ren":      "ren <file-id> <new-name> - Rename a file or folder",
	"move":     "move <file-id> <new-parent-id|root> - Move a file or folder",
	"ls":       "ls [parent-id] - List children, folders first",
	"cat":      "cat <file-id> - Print a file's content",
	"set":      "set <file-id> <content> - Replace a file's content",
	"export":   "export [-m] - Write the project zip; -m merges into one index.html",
	"help":     "help [command] - Show help",
	"exit":     "exit - Leave the shell",
}

func (c *CLI) printHelp(command string) {
	if command == "" {
		fmt.Println("Available commands:")
		names := make([]string, 0, len(commandHelp))
		for name := range commandHelp {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s\n", commandHelp[name])
		}
		return
	}

	if help, ok := commandHelp[command]; ok {
		fmt.Println(help)
	} else {
		fmt.Printf("No help available for: %s\n", command)
	}
}
