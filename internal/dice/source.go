package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source is the randomness provider for dice rolls.
type Source interface {
	// Intn returns a value in [0, n). n > 0.
	Intn(n int) int
}

// NewSeed returns a seed drawn from the operating system CSPRNG.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("dice: read seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63)), nil
}

// NewSeeded returns a Roller over a deterministic PRNG.
func NewSeeded(seed int64) *Roller {
	return NewRoller(rand.New(rand.NewSource(seed)))
}

// NewSecure returns a Roller seeded from the OS CSPRNG together with the
// seed used, so the run can be replayed.
func NewSecure() (*Roller, int64, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, 0, err
	}
	return NewSeeded(seed), seed, nil
}

// Scripted replays fixed die faces in order and wraps around when
// exhausted. A face larger than the die being rolled is reduced modulo
// the die size.
type Scripted struct {
	faces []int
	next  int
}

// NewScripted returns a Roller that yields the given faces in order.
func NewScripted(faces ...int) *Roller {
	return NewRoller(&Scripted{faces: faces})
}

func (s *Scripted) Intn(n int) int {
	if len(s.faces) == 0 {
		return 0
	}
	f := s.faces[s.next%len(s.faces)]
	s.next++
	if f < 1 {
		f = 1
	}
	return (f - 1) % n
}
