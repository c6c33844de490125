package mkfs

import (
	"os"
)

// DirList selects the direct entries of Dir that pass Filter.
type DirList struct {
	Dir    string
	Filter Filter
}

// List returns the names of the selected entries in directory order.
func (d DirList) List() (ls []string, err error) {
	rdir, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range rdir {
		if d.Filter != nil {
			if ok, err := d.Filter.Ok(entry.Name(), entry); err != nil {
				return nil, err
			} else if !ok {
				continue
			}
		}
		ls = append(ls, entry.Name())
	}
	return ls, nil
}
