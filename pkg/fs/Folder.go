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

// Folder represents a folder and the operations that can be performed on its children.
type Folder interface {
	Name() string
	FullPath() string
	CreateFile(ctx context.Context, name string, option CreationCollisionOption) (File, error)
	GetFile(ctx context.Context, name string) (File, error)
	// GetFiles returns the files directly inside the folder sorted by name.
	GetFiles(ctx context.Context) ([]File, error)
	CreateFolder(ctx context.Context, name string, option CreationCollisionOption) (Folder, error)
	GetFolder(ctx context.Context, name string) (Folder, error)
	// GetFolders returns the folders directly inside the folder sorted by name.
	GetFolders(ctx context.Context) ([]Folder, error)
	CheckExists(ctx context.Context, name string) (ExistenceCheckResult, error)
	// Delete deletes the folder and everything inside it.
	// Root storage folders cannot be deleted.
	Delete(ctx context.Context) error
}
