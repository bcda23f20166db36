package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

const appName = "addrserve"

// PathResolver locates config and catalog files relative to the binary,
// the working directory and the per-user config directory.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      configDirFor(homeDir),
	}
	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, appName)
		}
		return filepath.Join(homeDir, ".config", appName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	default:
		return filepath.Join(homeDir, ".config", appName)
	}
}

// CatalogCandidates lists where a catalog file named by path may live, most
// specific first.
func (pr *PathResolver) CatalogCandidates(path string) []string {
	if path == "" {
		return nil
	}
	if filepath.IsAbs(path) {
		return []string{path}
	}
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, path))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, path),
		filepath.Join(pr.executableDir, "data", filepath.Base(path)),
		filepath.Join(pr.configDir, "data", filepath.Base(path)),
	)
	return candidates
}

// ResolveCatalog returns the first existing candidate for path. When none
// exists the path is returned unchanged so the caller reports it.
func (pr *PathResolver) ResolveCatalog(path string) string {
	for _, candidate := range pr.CatalogCandidates(path) {
		if stat, err := os.Stat(candidate); err == nil && !stat.IsDir() {
			log.Debugf("Found catalog file: %s", candidate)
			return candidate
		}
		log.Debugf("Catalog candidate not found: %s", candidate)
	}
	return path
}

// GetConfigPath returns a writable location for filename, falling back to
// the home and temp directories.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	if pr.ensureWritable(pr.configDir) {
		return filepath.Join(pr.configDir, filename), nil
	}

	for _, dir := range []string{
		filepath.Join(pr.homeDir, "."+appName),
		filepath.Join(os.TempDir(), appName),
		pr.executableDir,
	} {
		if pr.ensureWritable(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("Using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}

func (pr *PathResolver) ensureWritable(dir string) bool {
	status := CheckDirStatus(dir)
	return status.Error == nil && status.Writable
}

func (pr *PathResolver) GetConfigDir() string     { return pr.configDir }
func (pr *PathResolver) GetExecutableDir() string { return pr.executableDir }

// RuntimeInfo returns the paths and environment used for resolution.
func (pr *PathResolver) RuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	info := map[string]string{
		"executable_path": pr.executablePath,
		"current_dir":     cwd,
		"config_dir":      pr.configDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}
	for _, envVar := range []string{"XDG_CONFIG_HOME", "APPDATA", "ADDRSERVE_CATALOG"} {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
