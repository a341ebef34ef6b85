// Command roaringctl is a thin demo binary: it loads a Roaring file (or
// generates random data if none is given), runs a round of set algebra
// against a second operand, and prints each set's cardinality and a short
// preview of its members. It takes
// positional file paths only, no flags, no config file.
package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/mypmc/go-roaring/roaring"
	"github.com/mypmc/go-roaring/roaring/wire"
)

func main() {
	args := os.Args[1:]

	var a, b *roaring.Bitset
	var err error

	switch len(args) {
	case 0:
		fmt.Println("no input files given, generating two random demo bitsets")
		a = randomDemoSet(50_000, 10_000_000)
		b = randomDemoSet(50_000, 10_000_000)
	case 1:
		if a, err = loadFile(args[0]); err != nil {
			log.Fatal(err)
		}
		b = randomDemoSet(50_000, 10_000_000)
	case 2:
		if a, err = loadFile(args[0]); err != nil {
			log.Fatal(err)
		}
		if b, err = loadFile(args[1]); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("usage: roaringctl [a.roaring] [b.roaring]")
	}

	report("a", a)
	report("b", b)

	and := a.And(b)
	or := a.Or(b)
	xor := a.Xor(b)
	andNot := a.AndNot(b)

	report("a & b", and)
	report("a | b", or)
	report("a ^ b", xor)
	report("a - b", andNot)
}

func loadFile(path string) (*roaring.Bitset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	s, err := wire.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return s, nil
}

func randomDemoSet(n int, max uint32) *roaring.Bitset {
	s := roaring.New()
	for i := 0; i < n; i++ {
		s.Insert(uint32(rand.Uint64() % uint64(max)))
	}
	s.Optimize()
	return s
}

func report(label string, s *roaring.Bitset) {
	fmt.Printf("%-8s cardinality=%-10d %s\n", label, s.Count1(), s)
}
