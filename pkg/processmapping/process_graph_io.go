package processmapping

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/util"
)

// ReadProcessGraphFile parses a target topology file: a header line with
// the number of blocks and the number of edges, then one "u v weight" line
// per edge. '%' lines are comments.
func ReadProcessGraphFile(filename string) (*ProcessGraph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	line, err := nextContentLine(scanner)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "missing process graph header in %s", filename)
	}
	var k da.PartitionID
	var numEdges int
	if _, err := fmt.Sscanf(line, "%d %d", &k, &numEdges); err != nil {
		return nil, err
	}

	edges := make([]ProcessGraphEdge, 0, numEdges)
	for i := 0; i < numEdges; i++ {
		line, err = nextContentLine(scanner)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "missing process graph edge line %d", i)
		}
		var u, v da.PartitionID
		var weight da.Weight
		if _, err := fmt.Sscanf(line, "%d %d %d", &u, &v, &weight); err != nil {
			return nil, err
		}
		edges = append(edges, NewProcessGraphEdge(u, v, weight))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewProcessGraph(k, edges), nil
}

func nextContentLine(scanner *bufio.Scanner) (string, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("unexpected end of file")
}
