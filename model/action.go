// api/model/action.go
package model

// Action is a bitmask of operations a grant permits on an (asset, account)
// pair. Zero means no permitted actions, which membership tests treat the
// same as the pair being absent.
type Action uint32

const (
	ActionConnect Action = 1 << iota
	ActionUploadFile
	ActionDownloadFile

	ActionNone Action = 0
	ActionAll  Action = 0xff
)

var actionBits = []struct {
	Name string
	Bit  Action
}{
	{"connect", ActionConnect},
	{"upload_file", ActionUploadFile},
	{"download_file", ActionDownloadFile},
}

// Names decodes the bitmask into the sorted-by-bit list of action names it
// contains.
func (a Action) Names() []string {
	names := make([]string, 0, len(actionBits))
	for _, ab := range actionBits {
		if a&ab.Bit != 0 {
			names = append(names, ab.Name)
		}
	}
	return names
}

// Contains reports whether the named action is a member of the bitmask.
// Unknown names are never members.
func (a Action) Contains(name string) bool {
	for _, ab := range actionBits {
		if ab.Name == name {
			return a&ab.Bit != 0
		}
	}
	return false
}
