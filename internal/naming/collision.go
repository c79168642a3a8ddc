package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/backmassage/gifbatch/internal/config"
)

// ErrOutputCollision is returned by [CollisionResolver.Resolve] under the
// "error" policy when the requested output already belongs to another input.
var ErrOutputCollision = errors.New("output path already claimed by another input")

// CollisionResolver tracks output paths claimed by input files during one
// batch and applies a [config.CollisionPolicy] to duplicates:
//
//   - overwrite: the requested path is returned; the later conversion
//     replaces the earlier output.
//   - error: a wrapped [ErrOutputCollision] is returned.
//   - suffix: a " - dupN" variant is generated.
//
// All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	policy   config.CollisionPolicy
	owners   map[string]string // output path → input path that owns it
	counters map[string]int    // base output path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver for policy.
func NewCollisionResolver(policy config.CollisionPolicy) *CollisionResolver {
	return &CollisionResolver{
		policy:   policy,
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final output path for input. If requestedOutput is
// unclaimed (or already owned by input) it is claimed and returned as-is.
func (cr *CollisionResolver) Resolve(input, requestedOutput string) (string, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[requestedOutput]
	if !exists || owner == input {
		cr.owners[requestedOutput] = input
		return requestedOutput, nil
	}

	switch cr.policy {
	case config.CollisionError:
		return "", fmt.Errorf("%w: %s (owned by %s)", ErrOutputCollision, requestedOutput, filepath.Base(owner))
	case config.CollisionSuffix:
		return cr.suffixed(input, requestedOutput), nil
	default:
		cr.owners[requestedOutput] = input
		return requestedOutput, nil
	}
}

// Owner reports which input currently owns output.
func (cr *CollisionResolver) Owner(output string) (string, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	owner, ok := cr.owners[output]
	return owner, ok
}

func (cr *CollisionResolver) suffixed(input, requestedOutput string) string {
	dir := filepath.Dir(requestedOutput)
	base := filepath.Base(requestedOutput)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[requestedOutput]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == input {
			cr.counters[requestedOutput] = counter + 1
			cr.owners[candidate] = input
			return candidate
		}
		counter++
	}
}
