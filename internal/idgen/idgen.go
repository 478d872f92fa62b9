// SPDX-License-Identifier: Apache-2.0

// Package idgen generates the opaque identifiers used for jobs and nodes.
package idgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewJobID returns an 8-character opaque job id, the same truncated-UUID
// idiom used elsewhere for short ids.
func NewJobID() string {
	return uuid.New().String()[:8]
}

// NewNodeID formats the node id for the given index.
func NewNodeID(index int) string {
	return fmt.Sprintf("N%d", index)
}

// NextNodeIndex returns one more than the largest index among existing node
// ids of the form N<index> (0 when there are none); gaps below the largest
// index are not reused. Ids of any other form are ignored. A populated
// cluster can therefore be extended
// without colliding with nodes adopted from a loaded document.
func NextNodeIndex(existing []string) int {
	max := -1
	for _, id := range existing {
		n, ok := parseNodeIndex(id)
		if ok && n > max {
			max = n
		}
	}
	return max + 1
}

func parseNodeIndex(id string) (int, bool) {
	if !strings.HasPrefix(id, "N") {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
