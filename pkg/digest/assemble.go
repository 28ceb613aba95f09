package digest

// Assemble combines selections and run metadata into the final digest.
// Pure structure; no filtering or scoring happens here.
func Assemble(selections []Selection, meta Meta) *Digest {
	return &Digest{
		Meta:       meta,
		Selections: selections,
	}
}

// IsEmpty reports whether no category selected anything. An empty
// digest is still valid output.
func (d *Digest) IsEmpty() bool {
	for _, sel := range d.Selections {
		if len(sel.Posts) > 0 {
			return false
		}
	}
	return true
}

// PostCount returns the total number of selected entries across all
// categories, counting a post once per category it appears in.
func (d *Digest) PostCount() int {
	n := 0
	for _, sel := range d.Selections {
		n += len(sel.Posts)
	}
	return n
}
