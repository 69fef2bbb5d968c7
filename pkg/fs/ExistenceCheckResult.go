// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

type ExistenceCheckResult int

const (
	NotFound ExistenceCheckResult = iota
	FileExists
	FolderExists
)

func (r ExistenceCheckResult) String() string {
	switch r {
	case FileExists:
		return "file"
	case FolderExists:
		return "folder"
	}
	return "not found"
}
