package memory_test

import (
	"testing"

	"github.com/latticelabs/lattice/pkg/adapters/memory"
	"github.com/latticelabs/lattice/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunJobStoreContract(t, memory.NewStore())
}
