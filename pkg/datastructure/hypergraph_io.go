package datastructure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/hyperflow/pkg/util"
)

const (
	HMETIS_FMT_UNWEIGHTED   = 0
	HMETIS_FMT_EDGE_WEIGHTS = 1
	HMETIS_FMT_NODE_WEIGHTS = 10
	HMETIS_FMT_BOTH_WEIGHTS = 11
)

// ReadHMetisFile parses a hypergraph in hMetis format: a header line
// "numEdges numNodes [fmt]" followed by one line per hyperedge (leading
// edge weight when fmt enables it, then 1-based pin IDs) and, when fmt
// enables node weights, one weight line per node. '%' lines are comments.
func ReadHMetisFile(filename string) (*Hypergraph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	line, err := nextContentLine(scanner)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "missing hMetis header in %s", filename)
	}
	header := strings.Fields(line)
	if len(header) < 2 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "malformed hMetis header: %q", line)
	}

	numEdges, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, err
	}
	numNodes, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, err
	}
	format := HMETIS_FMT_UNWEIGHTED
	if len(header) >= 3 {
		format, err = strconv.Atoi(header[2])
		if err != nil {
			return nil, err
		}
	}
	hasEdgeWeights := format == HMETIS_FMT_EDGE_WEIGHTS || format == HMETIS_FMT_BOTH_WEIGHTS
	hasNodeWeights := format == HMETIS_FMT_NODE_WEIGHTS || format == HMETIS_FMT_BOTH_WEIGHTS

	edges := make([][]Index, numEdges)
	var edgeWeights []Weight
	if hasEdgeWeights {
		edgeWeights = make([]Weight, numEdges)
	}

	for e := 0; e < numEdges; e++ {
		line, err = nextContentLine(scanner)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "missing hyperedge line %d", e)
		}
		fields := strings.Fields(line)
		at := 0
		if hasEdgeWeights {
			w, err := strconv.ParseInt(fields[at], 10, 64)
			if err != nil {
				return nil, err
			}
			edgeWeights[e] = Weight(w)
			at++
		}
		pins := make([]Index, 0, len(fields)-at)
		for ; at < len(fields); at++ {
			pin, err := strconv.Atoi(fields[at])
			if err != nil {
				return nil, err
			}
			if pin < 1 || pin > numNodes {
				return nil, util.WrapErrorf(nil, util.ErrBadParamInput,
					"pin %d of hyperedge %d out of range", pin, e)
			}
			pins = append(pins, Index(pin-1))
		}
		edges[e] = pins
	}

	var nodeWeights []Weight
	if hasNodeWeights {
		nodeWeights = make([]Weight, numNodes)
		for v := 0; v < numNodes; v++ {
			line, err = nextContentLine(scanner)
			if err != nil {
				return nil, util.WrapErrorf(err, util.ErrBadParamInput, "missing node weight line %d", v)
			}
			w, err := strconv.ParseInt(strings.Fields(line)[0], 10, 64)
			if err != nil {
				return nil, err
			}
			nodeWeights[v] = Weight(w)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewHypergraph(numNodes, edges, nodeWeights, edgeWeights), nil
}

// WritePartitionFile persists the block vector of phg, bzip2-compressed:
// header "numNodes k", then one block ID per line.
func (phg *PartitionedHypergraph) WritePartitionFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d\n", phg.hg.NumberOfNodes(), phg.k)
	for v := 0; v < phg.hg.NumberOfNodes(); v++ {
		fmt.Fprintf(w, "%d\n", phg.PartID(Index(v)))
	}

	return w.Flush()
}

// ReadPartitionFile reads a block vector written by WritePartitionFile.
func ReadPartitionFile(filename string) ([]PartitionID, PartitionID, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, 0, err
	}
	defer bz.Close()

	scanner := bufio.NewScanner(bz)

	line, err := nextContentLine(scanner)
	if err != nil {
		return nil, 0, err
	}
	var numNodes int
	var k PartitionID
	if _, err := fmt.Sscanf(line, "%d %d", &numNodes, &k); err != nil {
		return nil, 0, err
	}

	part := make([]PartitionID, numNodes)
	for v := 0; v < numNodes; v++ {
		line, err = nextContentLine(scanner)
		if err != nil {
			return nil, 0, err
		}
		var b PartitionID
		if _, err := fmt.Sscanf(line, "%d", &b); err != nil {
			return nil, 0, err
		}
		part[v] = b
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return part, k, nil
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
