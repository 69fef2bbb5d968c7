// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"context"
)

// FileSystem provides access to the application data stores.
// Application data consists of files and settings that are either local or roaming.
type FileSystem interface {
	// LocalStorage returns the root folder of the local application data store.
	LocalStorage() Folder
	// RoamingStorage returns the root folder of the roaming application data store.
	RoamingStorage() Folder
	// GetFileFromPath returns the file at the given path.
	GetFileFromPath(ctx context.Context, path string) (File, error)
	// GetFolderFromPath returns the folder at the given path.
	GetFolderFromPath(ctx context.Context, path string) (Folder, error)
}
