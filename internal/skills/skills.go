// Package skills installs agent skill files from the current project into
// the user's global skills directory.
package skills

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Install copies every skill directory under <cwd>/.agents/skills into
// ~/.claude/skills. Per-file problems are reported as warnings on stderr and
// skipped; Install fails only when nothing could be copied at all.
// It returns the number of skills copied.
func Install() (int, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return 0, fmt.Errorf("get working directory: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return 0, fmt.Errorf("get home directory: %w", err)
	}

	return InstallFrom(filepath.Join(cwd, ".agents", "skills"), filepath.Join(home, ".claude", "skills"))
}

// InstallFrom copies skill directories from srcDir into dstDir.
func InstallFrom(srcDir, dstDir string) (int, error) {
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return 0, fmt.Errorf("no %s directory found", srcDir)
	}

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return 0, fmt.Errorf("create skills directory: %w", err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return 0, fmt.Errorf("read skills directory: %w", err)
	}

	copied := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		src := filepath.Join(srcDir, name)
		dst := filepath.Join(dstDir, name)

		if err := os.MkdirAll(dst, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create directory for skill %q: %v\n", name, err)
			continue
		}

		files, err := os.ReadDir(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not read skill %q: %v\n", name, err)
			continue
		}

		for _, f := range files {
			if f.IsDir() {
				continue
			}
			if err := copyFile(filepath.Join(src, f.Name()), filepath.Join(dst, f.Name())); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not copy %s: %v\n", f.Name(), err)
				continue
			}
		}

		copied++
	}

	if copied == 0 {
		return 0, fmt.Errorf("no skills found to copy")
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	return nil
}
