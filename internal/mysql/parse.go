package mysql

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/imamik/mysqlset/internal/util/naming"
)

// ParseRows splits batch-mode output into rows of tab-separated columns and
// undoes the escaping of backslash, tab, newline and NUL inside values.
// Blank lines are dropped.
func ParseRows(output string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		for i, f := range fields {
			fields[i] = batchUnescaper.Replace(f)
		}
		rows = append(rows, fields)
	}
	return rows
}

// batchUnescaper reverses the value escaping of `mysql --batch`.
var batchUnescaper = strings.NewReplacer(`\\`, `\`, `\t`, "\t", `\n`, "\n", `\0`, "\x00")

// ParseMessages returns the first column of every row.
func ParseMessages(output string) []string {
	rows := ParseRows(output)
	messages := make([]string, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row[0])
	}
	return messages
}

// ParseServerIDs parses one server id per line.
func ParseServerIDs(output string) ([]int, error) {
	var ids []int
	for _, row := range ParseRows(output) {
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("unexpected server id %q: %w", row[0], err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// OrdinalForServerID maps a server id back to the pod ordinal that owns it.
func OrdinalForServerID(id, offset int) (int, bool) {
	ordinal := id - offset
	if ordinal < 0 {
		return 0, false
	}
	return ordinal, true
}

// Distribution counts samples per pod ordinal.
type Distribution map[int]int

// Distribute maps server ids to ordinals and counts them.
func Distribute(ids []int, offset int) (Distribution, error) {
	d := Distribution{}
	for _, id := range ids {
		ordinal, ok := OrdinalForServerID(id, offset)
		if !ok {
			return nil, fmt.Errorf("server id %d is below the offset %d", id, offset)
		}
		d[ordinal]++
	}
	return d, nil
}

// Ordinals returns the ordinals that answered, ascending.
func (d Distribution) Ordinals() []int {
	ordinals := make([]int, 0, len(d))
	for ordinal := range d {
		ordinals = append(ordinals, ordinal)
	}
	sort.Ints(ordinals)
	return ordinals
}

// Total returns the number of samples.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Format renders the distribution as "mysql-0=2, mysql-1=3".
func (d Distribution) Format(name string) string {
	parts := make([]string, 0, len(d))
	for _, ordinal := range d.Ordinals() {
		parts = append(parts, fmt.Sprintf("%s=%d", naming.Pod(name, ordinal), d[ordinal]))
	}
	return strings.Join(parts, ", ")
}
