// Package gapbuffer provides a generic gap buffer: a resizable sequence
// optimized for localized insertion and removal.
//
// The buffer keeps a run of unused slots (the gap) at the most recent edit
// point. Inserting or removing next to the gap costs O(1); moving the gap
// costs time proportional to the distance moved. Random reads are O(1)
// regardless of where the gap sits.
//
// Basic usage:
//
//	g := gapbuffer.New[int](0)
//	g.Append(1)
//	g.Append(3)
//	g.Insert(1, 2)        // [1 2 3]
//	g.RemoveAt(0)         // [2 3]
//	for i, v := range g.All() {
//	    fmt.Println(i, v)
//	}
//
// Index errors wrap ErrIndexOutOfRange. At and Ptr panic instead, for
// callers that have already validated the index.
package gapbuffer
