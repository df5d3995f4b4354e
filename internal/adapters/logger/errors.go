package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// maxChainDepth bounds traversal of pathological error chains.
const maxChainDepth = 64

// messager is implemented by zerr errors. Message returns the text of one
// link without its causes.
type messager interface {
	Message() string
}

type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one link of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries flattens err into one entry per chain link.
// A standard error ends the walk with its full text. Links without a message
// only carry metadata, which is merged into the next link that has one.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	for depth := 0; err != nil && depth < maxChainDepth; depth++ {
		m, ok := err.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: err.Error(), Metadata: pending})
			break
		}

		meta := pending
		pending = nil
		if md, ok := err.(metadataer); ok {
			if own := md.Metadata(); len(own) > 0 {
				if meta == nil {
					meta = make(map[string]any, len(own))
				}
				maps.Copy(meta, own)
			}
		}

		if m.Message() == "" {
			pending = meta
		} else {
			entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: meta})
		}
		err = errors.Unwrap(err)
	}

	if len(pending) > 0 && len(entries) > 0 {
		last := &entries[len(entries)-1]
		if last.Metadata == nil {
			last.Metadata = make(map[string]any, len(pending))
		}
		maps.Copy(last.Metadata, pending)
	}

	return entries
}

// formatErrorEntries renders entries as the main error followed by its causes.
//
//	Error: plan target
//	       target: app
//
//	  Caused by:
//	    → cycle detected
//	      cycle: a -> b -> a
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, e := range entries {
		msg := strings.Split(e.Message, "\n")

		head, indent := "    → ", "      "
		if i == 0 {
			head, indent = "Error: ", "       "
		} else if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}

		lines = append(lines, head+msg[0])
		for _, cont := range msg[1:] {
			lines = append(lines, indent+cont)
		}
		for _, k := range slices.Sorted(maps.Keys(e.Metadata)) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, e.Metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
