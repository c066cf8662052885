package lines

// Marker numbers. The top seven slots are reserved for fold margin symbols.
const (
	MarkerMax           = 31
	MarkerFolderEnd     = 25
	MarkerFolderOpenMid = 26
	MarkerFolderMidTail = 27
	MarkerFolderTail    = 28
	MarkerFolderSub     = 29
	MarkerFolder        = 30
	MarkerFolderOpen    = 31

	// MaskFolders selects the fold margin markers.
	MaskFolders uint32 = 0xFE000000
	// MaskAll selects every marker.
	MaskAll uint32 = 0xFFFFFFFF
)

func markerBit(marker int) uint32 {
	return 1 << uint(Clamp(marker, 0, MarkerMax))
}

// MarkerAdd sets marker on line. A marker of -1, which means every marker
// elsewhere, adds nothing.
func (c *Collection) MarkerAdd(line, marker int) {
	if marker == -1 {
		return
	}
	c.data.Ptr(c.clampLine(line)).Markers |= markerBit(marker)
}

// MarkerDelete clears marker on line. A marker of -1 clears every marker.
func (c *Collection) MarkerDelete(line, marker int) {
	p := c.data.Ptr(c.clampLine(line))
	if marker == -1 {
		p.Markers = 0
		return
	}
	p.Markers &^= markerBit(marker)
}

// MarkerGet returns the marker mask of line.
func (c *Collection) MarkerGet(line int) uint32 {
	return c.data.Ptr(c.clampLine(line)).Markers
}

// MarkerDeleteAll clears marker on every line, or every marker when marker
// is -1.
func (c *Collection) MarkerDeleteAll(marker int) {
	mask := MaskAll
	if marker != -1 {
		mask = markerBit(marker)
	}
	for i := 0; i < c.Count(); i++ {
		c.data.Ptr(i).Markers &^= mask
	}
}

// MarkerNext returns the first line at or after line with a marker in mask,
// or -1.
func (c *Collection) MarkerNext(line int, mask uint32) int {
	for i := max(line, 0); i < c.Count(); i++ {
		if c.data.Ptr(i).Markers&mask != 0 {
			return i
		}
	}
	return -1
}

// MarkerPrevious returns the last line at or before line with a marker in
// mask, or -1.
func (c *Collection) MarkerPrevious(line int, mask uint32) int {
	for i := min(line, c.Count()-1); i >= 0; i-- {
		if c.data.Ptr(i).Markers&mask != 0 {
			return i
		}
	}
	return -1
}
