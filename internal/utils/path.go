package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// FileExists simply checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0755)
}

// WritableDir creates dirPath if needed and probes it with a temp file
func WritableDir(dirPath string) bool {
	if err := EnsureDir(dirPath); err != nil {
		log.Debugf("Cannot create directory %s: %v", dirPath, err)
		return false
	}
	probe, err := os.CreateTemp(dirPath, ".write_test-*")
	if err != nil {
		log.Debugf("Cannot write to directory %s: %v", dirPath, err)
		return false
	}
	probe.Close()
	os.Remove(probe.Name())
	return true
}

// GetAbsolutePath returns the absolute form of path, or "unknown" when empty
func GetAbsolutePath(path string) string {
	if path == "" {
		return "unknown"
	}
	if absPath, err := filepath.Abs(path); err == nil {
		return absPath
	}
	return path
}

// GetExecutableDir returns the directory of the current executable
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// PathResolver finds the corpus data directory relative to the binary
type PathResolver struct {
	executableDir string
	configDir     string
	markers       []string
}

// NewPathResolver creates a resolver. A directory is accepted as a data
// dir when it holds at least one of the marker files.
func NewPathResolver(configDir string, markers ...string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     configDir,
		markers:       markers,
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, configDir)
	return pr, nil
}

// GetDataDir resolves the data directory containing corpus files.
// It tries multiple locations in order of preference:
// 1. User-specified path (if absolute)
// 2. Relative to current working directory
// 3. Relative to executable directory
// 4. data/ next to the binary, its parent, or the config dir
func (pr *PathResolver) GetDataDir(userSpecifiedPath string) string {
	candidates := pr.candidates(userSpecifiedPath)
	for _, path := range candidates {
		if pr.isValidDataDir(path) {
			log.Debugf("Found valid data directory: %s", path)
			return path
		}
		log.Debugf("Data directory candidate not valid: %s", path)
	}
	// Nothing found, return the requested path for error reporting
	return userSpecifiedPath
}

func (pr *PathResolver) candidates(userSpecifiedPath string) []string {
	if filepath.IsAbs(userSpecifiedPath) {
		return []string{userSpecifiedPath}
	}
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, userSpecifiedPath))
	}
	paths = append(paths,
		filepath.Join(pr.executableDir, userSpecifiedPath),
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
	)
	if pr.configDir != "" {
		paths = append(paths, filepath.Join(pr.configDir, "data"))
	}
	return paths
}

// isValidDataDir checks if a directory contains any of the marker files
func (pr *PathResolver) isValidDataDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	for _, name := range pr.markers {
		if FileExists(filepath.Join(path, name)) {
			return true
		}
	}
	return false
}
