package discovery

import "time"

// DiscoveredFile represents an output part found on disk
type DiscoveredFile struct {
	Path         string    // Absolute path to file
	RelativePath string    // Path relative to the search directory
	Index        int       // Part index parsed from the file name
	Size         int64     // File size in bytes
	ModTime      time.Time // Last modification time
}
