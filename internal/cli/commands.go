package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"siteforge/internal/archive"
	"siteforge/internal/merge"
	"siteforge/internal/models"
)

func (c *CLI) handleProjects(args []string) error {
	projects := c.pm.ProjectList()
	if len(projects) == 0 {
		fmt.Println("No projects yet. Use 'new <name> [html|php]' to create one.")
		return nil
	}
	for _, p := range projects {
		marker := " "
		if current := c.pm.Current(); current != nil && current.ID == p.ID {
			marker = "*"
		}
		fmt.Printf("%s %s  %s (%s, %d files)\n", marker, p.ID, p.Name, p.Type, len(p.Files))
	}
	return nil
}

func (c *CLI) handleNew(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: new <name> [html|php]")
	}

	projectType := models.ProjectHTML
	if len(args) > 1 {
		projectType = models.ProjectType(args[1])
		if projectType != models.ProjectHTML && projectType != models.ProjectPHP {
			return fmt.Errorf("unknown project type: %s", args[1])
		}
	}

	project, err := c.pm.ProjectAdd(args[0], projectType)
	if err != nil {
		return err
	}
	if _, err := c.pm.ProjectSelect(project.ID); err != nil {
		return err
	}

	fmt.Printf("Created and selected project '%s' (%s)\n", project.Name, project.ID)
	return nil
}

func (c *CLI) handleOpen(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <project-id>")
	}
	project, err := c.pm.ProjectSelect(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Selected project '%s'\n", project.Name)
	return nil
}

func (c *CLI) handleDuplicate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dup <project-id>")
	}
	dup, err := c.pm.ProjectDuplicate(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Duplicated as '%s' (%s)\n", dup.Name, dup.ID)
	return nil
}

func (c *CLI) handleDeleteProject(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delproj <project-id>")
	}
	if err := c.pm.ProjectDelete(args[0]); err != nil {
		return err
	}
	fmt.Println("Project deleted")
	return nil
}

func (c *CLI) handleAdd(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: add <parent-id|root> <name> [content]")
	}

	content := ""
	if len(args) > 2 {
		content = args[2]
	}

	project := c.pm.Current()
	file, err := c.fm.FileAdd(project, args[0], args[1], content, false)
	if err != nil {
		return err
	}
	if err := c.pm.ProjectSave(project); err != nil {
		return err
	}

	fmt.Printf("Added file '%s' (%s)\n", file.Name, file.ID)
	return nil
}

func (c *CLI) handleMkdir(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mkdir <parent-id|root> <name>")
	}

	project := c.pm.Current()
	dir, err := c.fm.FileAdd(project, args[0], args[1], "", true)
	if err != nil {
		return err
	}
	if err := c.pm.ProjectSave(project); err != nil {
		return err
	}

	fmt.Printf("Added folder '%s' (%s)\n", dir.Name, dir.ID)
	return nil
}

func (c *CLI) handleDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: del <file-id>")
	}

	project := c.pm.Current()
	if err := c.fm.FileDelete(project, args[0]); err != nil {
		return err
	}
	if err := c.pm.ProjectSave(project); err != nil {
		return err
	}

	fmt.Println("Deleted")
	return nil
}

func (c *CLI) handleRename(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: ren <file-id> <new-name>")
	}

	project := c.pm.Current()
	if err := c.fm.FileRename(project, args[0], args[1]); err != nil {
		return err
	}
	if err := c.pm.ProjectSave(project); err != nil {
		return err
	}

	fmt.Println("Renamed")
	return nil
}

func (c *CLI) handleMove(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: move <file-id> <new-parent-id|root>")
	}

	project := c.pm.Current()
	if err := c.fm.FileMove(project, args[0], args[1]); err != nil {
		return err
	}
	if err := c.pm.ProjectSave(project); err != nil {
		return err
	}

	fmt.Println("Moved")
	return nil
}

func (c *CLI) handleList(args []string) error {
	parentID := models.RootID
	if len(args) > 0 {
		parentID = args[0]
	}

	files, err := c.fm.FileList(c.pm.Current(), parentID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("(empty)")
		return nil
	}

	for _, f := range files {
		if f.IsDirectory {
			fmt.Printf("%s  %s/\n", f.ID, f.Name)
		} else {
			fmt.Printf("%s  %s\n", f.ID, f.Name)
		}
	}
	return nil
}

func (c *CLI) handleCat(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cat <file-id>")
	}

	file, err := c.fm.FileGet(c.pm.Current(), args[0])
	if err != nil {
		return err
	}
	if file.IsDirectory {
		return models.ErrIsDirectory
	}

	fmt.Println(file.Content)
	return nil
}

func (c *CLI) handleSetContent(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <file-id> <content>")
	}

	project := c.pm.Current()
	if err := c.fm.FileUpdateContent(project, args[0], args[1]); err != nil {
		return err
	}
	if err := c.pm.ProjectSave(project); err != nil {
		return err
	}

	fmt.Println("Updated")
	return nil
}

// handleExport writes the project archive to the export directory. With -m
// the single-file merged form is produced instead of the full tree.
func (c *CLI) handleExport(args []string) error {
	project := c.pm.Current()
	if project == nil {
		return models.ErrNoProject
	}

	merged := len(args) > 0 && args[0] == "-m"

	var blob []byte
	var err error
	if merged {
		blob, err = merge.Export(c.exporter, project)
	} else {
		var results <-chan archive.Result
		results, err = c.exporter.ExportAsync(project)
		if err != nil {
			return err
		}
		result := <-results
		blob, err = result.Data, result.Err
	}
	if err != nil {
		return err
	}

	outPath := filepath.Join(c.exportDir, archive.SanitizeName(project.Name)+".zip")
	if err := os.WriteFile(outPath, blob, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	fmt.Printf("Exported to %s\n", outPath)
	return nil
}

func (c *CLI) handleHelp(args []string) error {
	command := ""
	if len(args) > 0 {
		command = args[0]
	}
	c.printHelp(command)
	return nil
}
