package merkle_test

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
)

// Transaction ids from Bitcoin block 100000.
var block100000 = []string{
	"8c14f0db3df150123e6f3dbbf30f8b955a8249b62ac1d1ff16284aefa3d06d87",
	"fff2525b8931402dd09222c50775608f75787bd2b87e56995a7bdd30f79702c4",
	"6359f0868171b1d194cbee1af2f16ea598ae8fad666d9b012c8ed2b79a236ec4",
	"e9a66845e05d5abc0ad04ec80f774a7e585c6e8db975962d069a522137b80c1d",
}

// Transaction ids from Bitcoin block 170.
var block170 = []string{
	"b1fea52486ce0c62bb442b530a3f0132b826c74e473d1f2c220bfa78111c5082",
	"f4184fc596403b9d638783cf57adfe4c75c605f6356fbc91338530e9831e9e16",
}

var table = []struct {
	testCaseId   int
	name         string
	hashStrategy func() hash.Hash
	ids          []string
	expectedRoot string
}{
	{
		testCaseId:   1,
		name:         "single",
		hashStrategy: sha256.New,
		ids:          block170[:1],
		expectedRoot: "b1fea52486ce0c62bb442b530a3f0132b826c74e473d1f2c220bfa78111c5082",
	},
	{
		testCaseId:   2,
		name:         "bitcoin block 170",
		hashStrategy: sha256.New,
		ids:          block170,
		expectedRoot: "7dac2c5666815c17a3b36427de37bb9d2e2c5ccec3f8633eb91a4205cb4c10ff",
	},
	{
		testCaseId:   3,
		name:         "bitcoin block 100000",
		hashStrategy: sha256.New,
		ids:          block100000,
		expectedRoot: "f3e94742aca4b5ef85488dc37c06c3282295ffec960994b2c0d5ac2a25a95766",
	},
	{
		testCaseId:   4,
		name:         "odd three",
		hashStrategy: sha256.New,
		ids:          block100000[:3],
		expectedRoot: "fa435470825de273081dcc706b25514c936fa6dc80ab965ce6970d68ddd0b553",
	},
	{
		testCaseId:   5,
		name:         "odd five",
		hashStrategy: sha256.New,
		ids:          append(append([]string{}, block100000...), block100000[0]),
		expectedRoot: "294b257084a14ef954334f28cffb6f7724e27b025bfc8111ed89a503184eb42f",
	},
	{
		testCaseId:   6,
		name:         "sha512_256 strategy",
		hashStrategy: sha512.New512_256,
		ids:          block100000,
		expectedRoot: "c327048364f9c74a34c34058698287a38b6c4d451f0c43b9e2f4fe1ed894147b",
	},
}

func toIDs(ids []string) []merkle.ID {
	values := make([]merkle.ID, len(ids))
	for i, id := range ids {
		values[i] = merkle.ID(id)
	}
	return values
}

// =============================================================================

func Test_RootFromIDs(t *testing.T) {
	for _, tst := range table {
		if tst.name == "sha512_256 strategy" {
			continue
		}

		root, err := merkle.RootFromIDs(tst.ids)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", tst.testCaseId, err)
		}
		if root != tst.expectedRoot {
			t.Errorf("[case:%d] error: expected root equal to %s got %s", tst.testCaseId, tst.expectedRoot, root)
		}
	}
}

func Test_NewTreeWithHashStrategy(t *testing.T) {
	for _, tst := range table {
		tree, err := merkle.NewTree(toIDs(tst.ids), merkle.WithHashStrategy[merkle.ID](tst.hashStrategy))
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", tst.testCaseId, err)
		}
		if tree.RootHex() != tst.expectedRoot {
			t.Errorf("[case:%d] error: expected root equal to %s got %s", tst.testCaseId, tst.expectedRoot, tree.RootHex())
		}
		if len(tree.Values()) != len(tst.ids) {
			t.Errorf("[case:%d] error: expected %d values got %d", tst.testCaseId, len(tst.ids), len(tree.Values()))
		}
	}
}

func Test_Deterministic(t *testing.T) {
	first, err := merkle.RootFromIDs(block100000)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	second, err := merkle.RootFromIDs(block100000)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("error: expected identical roots got %s and %s", first, second)
	}

	reversed := make([]string, len(block100000))
	for i, id := range block100000 {
		reversed[len(block100000)-1-i] = id
	}

	root, err := merkle.RootFromIDs(reversed)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	const expReversed = "49045158bd20c8e6926656147ec1521c4842d0b5a50ffcf35d854f1b167c85ad"
	if root != expReversed {
		t.Errorf("error: expected root equal to %s got %s", expReversed, root)
	}
	if root == first {
		t.Errorf("error: expected reordering to change the root")
	}
}

func Test_OddDuplicatesLast(t *testing.T) {
	odd, err := merkle.RootFromIDs(block100000[:3])
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	padded, err := merkle.RootFromIDs(append(append([]string{}, block100000[:3]...), block100000[2]))
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if odd != padded {
		t.Errorf("error: expected odd level to match explicit duplicate, got %s and %s", odd, padded)
	}
}

// bitcoinRoot computes a merkle root the way Bitcoin Core does. Ids are
// flipped into internal byte order once, levels are reduced with the last
// node repeated when the count is odd, and the root is flipped back.
func bitcoinRoot(t *testing.T, ids []string) string {
	level := make([][]byte, len(ids))
	for i, id := range ids {
		b, err := hex.DecodeString(id)
		if err != nil {
			t.Fatalf("error: unexpected error: %v", err)
		}
		level[i] = flip(b)
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}

		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			first := sha256.Sum256(append(append([]byte{}, level[i]...), level[i+1]...))
			second := sha256.Sum256(first[:])
			next = append(next, second[:])
		}
		level = next
	}

	return hex.EncodeToString(flip(level[0]))
}

func flip(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

func Test_BitcoinOddLevels(t *testing.T) {
	const published = "f3e94742aca4b5ef85488dc37c06c3282295ffec960994b2c0d5ac2a25a95766"
	if got := bitcoinRoot(t, block100000); got != published {
		t.Fatalf("error: expected reference root %s got %s", published, got)
	}

	all := append(append([]string{}, block100000...), block170...)
	for n := 1; n <= len(all); n++ {
		ids := all[:n]

		root, err := merkle.RootFromIDs(ids)
		if err != nil {
			t.Fatalf("[count:%d] error: unexpected error: %v", n, err)
		}

		if exp := bitcoinRoot(t, ids); root != exp {
			t.Errorf("[count:%d] error: expected root equal to %s got %s", n, exp, root)
		}
	}
}

func Test_SingleVerbatim(t *testing.T) {
	upper := strings.ToUpper(block170[0])

	root, err := merkle.RootFromIDs([]string{upper})
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	if root != upper {
		t.Errorf("error: expected the single id back verbatim, got %s", root)
	}

	if _, err := merkle.RootFromIDs([]string{"not-hex"}); err == nil {
		t.Errorf("error: expected an error for an invalid single hex id")
	}
}

func Test_InvalidInput(t *testing.T) {
	if _, err := merkle.RootFromIDs(nil); !errors.Is(err, merkle.ErrNoContent) {
		t.Errorf("error: expected ErrNoContent got %v", err)
	}

	if _, err := merkle.RootFromIDs([]string{block170[0], "not-hex"}); err == nil {
		t.Errorf("error: expected an error for an invalid hex id")
	}
}

func Test_Proof(t *testing.T) {
	for _, tst := range table {
		if tst.name == "sha512_256 strategy" {
			continue
		}

		tree, err := merkle.NewTree(toIDs(tst.ids))
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", tst.testCaseId, err)
		}

		for _, id := range tst.ids {
			proof, order, err := tree.Proof(merkle.ID(id))
			if err != nil {
				t.Fatalf("[case:%d] error: unexpected proof error: %v", tst.testCaseId, err)
			}

			if err := merkle.VerifyProof(id, merkle.ProofHex(proof), order, tree.RootHex()); err != nil {
				t.Errorf("[case:%d] error: expected proof for %s to verify: %v", tst.testCaseId, id[:8], err)
			}

			if len(proof) > 0 {
				if err := merkle.VerifyProof(id, merkle.ProofHex(proof), order, block170[1]); err == nil {
					t.Errorf("[case:%d] error: expected proof to fail against the wrong root", tst.testCaseId)
				}
			}
		}

		if _, _, err := tree.Proof(merkle.ID("00")); !errors.Is(err, merkle.ErrNotFound) {
			t.Errorf("[case:%d] error: expected ErrNotFound got %v", tst.testCaseId, err)
		}
	}
}

func Test_Verify(t *testing.T) {
	for _, tst := range table {
		tree, err := merkle.NewTree(toIDs(tst.ids), merkle.WithHashStrategy[merkle.ID](tst.hashStrategy))
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", tst.testCaseId, err)
		}

		if err := tree.Verify(); err != nil {
			t.Errorf("[case:%d] error: expected tree to be valid: %v", tst.testCaseId, err)
		}

		tree.MerkleRoot = []byte{1}
		if err := tree.Verify(); err == nil {
			t.Errorf("[case:%d] error: expected tree to be invalid", tst.testCaseId)
		}
	}
}
