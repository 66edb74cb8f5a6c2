package workflows

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/carlock/internal/audit"
	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/secrets"
)

// setupChallenges runs keygen, one open and challenge generation.
func setupChallenges(t *testing.T, suite configs.Suite) (configs.Settings, *ChallengeResult) {
	t.Helper()
	s := setupStore(t, suite, configs.NonceInsecureFixed)
	openOnce(t, s, secrets.InsecureFixedNonce{Value: secrets.DefaultFixedNonce})

	result, err := CreateChallenges(context.Background(), ChallengeOptions{Settings: s})
	if err != nil {
		t.Fatalf("CreateChallenges failed: %v", err)
	}
	return s, result
}

func readCiphertext(t *testing.T, path string) []byte {
	t.Helper()
	a, err := secrets.ReadArtifact(path, secrets.CodeSize)
	if err != nil {
		t.Fatalf("ReadArtifact failed: %v", err)
	}
	return a.Ciphertext
}

func TestCreateChallenges(t *testing.T) {
	s, result := setupChallenges(t, configs.SuiteAESCTR)

	if len(result.Files) != DefaultChallengeCount {
		t.Fatalf("Expected %d challenges, got %d", DefaultChallengeCount, len(result.Files))
	}
	for i, path := range result.Files {
		want := filepath.Join(s.Dir, secrets.ArtifactName(secrets.ChallengeName, i+1))
		if path != want {
			t.Errorf("Expected %s, got %s", want, path)
		}
		a, err := secrets.ReadArtifact(path, secrets.CodeSize)
		if err != nil {
			t.Fatalf("ReadArtifact failed: %v", err)
		}
		if a.Nonce != fixedNonce {
			t.Errorf("Expected challenge nonce %x, got %x", fixedNonce, a.Nonce)
		}
	}
	if bytes.Equal(readCiphertext(t, result.Files[0]), readCiphertext(t, result.Files[1])) {
		t.Error("Expected distinct challenge blocks")
	}
	if loadConfig(t, s).Index != 1 {
		t.Error("Expected challenge generation to leave the store untouched")
	}
}

func TestCreateChallengesRefusesExisting(t *testing.T) {
	s, result := setupChallenges(t, configs.SuiteAESCTR)
	before := readCiphertext(t, result.Files[0])

	_, err := CreateChallenges(context.Background(), ChallengeOptions{Settings: s})
	if !errors.Is(err, kerrors.ErrArtifactExists) {
		t.Fatalf("Expected ErrArtifactExists, got %v", err)
	}

	openOnce(t, s, secrets.InsecureFixedNonce{Value: secrets.DefaultFixedNonce})
	forced, err := CreateChallenges(context.Background(), ChallengeOptions{Settings: s, Count: 2, Force: true})
	if err != nil {
		t.Fatalf("CreateChallenges with Force failed: %v", err)
	}
	if len(forced.Removed) != 3 || len(forced.Files) != 2 {
		t.Errorf("Expected 3 removed and 2 written, got %d and %d", len(forced.Removed), len(forced.Files))
	}
	if bytes.Equal(before, readCiphertext(t, forced.Files[0])) {
		t.Error("Expected new challenges after the store advanced")
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "challenge.3.enc")); !os.IsNotExist(err) {
		t.Error("Expected challenge.3.enc to be removed")
	}
}

func TestCreateChallengesMissingArtifact(t *testing.T) {
	s := setupStore(t, configs.SuiteAESCTR, configs.NonceInsecureFixed)
	_, err := CreateChallenges(context.Background(), ChallengeOptions{Settings: s})
	if !errors.Is(err, kerrors.ErrIOFailure) {
		t.Errorf("Expected ErrIOFailure, got %v", err)
	}
}

func TestSolvePredictsHeldBackChallenge(t *testing.T) {
	for _, suite := range configs.Suites {
		t.Run(string(suite), func(t *testing.T) {
			s, result := setupChallenges(t, suite)
			expected := readCiphertext(t, result.Files[2])
			if err := os.Remove(result.Files[2]); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}

			solved, err := Solve(context.Background(), SolveOptions{Settings: s})
			if err != nil {
				t.Fatalf("Solve failed: %v", err)
			}
			if solved.Output != result.Files[2] {
				t.Errorf("Expected output %s, got %s", result.Files[2], solved.Output)
			}
			if solved.Target != 2 || !solved.Recovered {
				t.Errorf("Expected target 2 with full recovery, got %d (recovered %v)", solved.Target, solved.Recovered)
			}
			if !bytes.Equal(readCiphertext(t, solved.Output), expected) {
				t.Error("Predicted challenge does not match the held-back one")
			}

			verified, err := Verify(context.Background(), VerifyOptions{Settings: s, Artifact: solved.Output})
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if !verified.Match || verified.Block != 3 {
				t.Errorf("Expected a match for block 3, got %+v", verified)
			}
		})
	}
}

func TestSolveReplacesDerivedChallenge(t *testing.T) {
	s, result := setupChallenges(t, configs.SuiteAESCTR)
	expected := readCiphertext(t, result.Files[2])

	solved, err := Solve(context.Background(), SolveOptions{Settings: s})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if filepath.Base(solved.Output) != filepath.Base(result.Files[2]) {
		t.Errorf("Expected %s, got %s", filepath.Base(result.Files[2]), solved.Output)
	}
	if !bytes.Equal(readCiphertext(t, solved.Output), expected) {
		t.Error("Expected replaced challenge to equal the original")
	}
}

func TestSolveExplicitOutputIsWriteOnce(t *testing.T) {
	s, result := setupChallenges(t, configs.SuiteAESCTR)
	expected := readCiphertext(t, result.Files[2])

	out := filepath.Join(s.Dir, "prediction.enc")
	if err := os.WriteFile(out, []byte("previous"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Solve(context.Background(), SolveOptions{Settings: s, Output: "prediction.enc"})
	if !errors.Is(err, kerrors.ErrArtifactExists) {
		t.Fatalf("Expected ErrArtifactExists, got %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "previous" {
		t.Error("Expected existing output to be untouched")
	}

	solved, err := Solve(context.Background(), SolveOptions{Settings: s, Output: "prediction.enc", Force: true})
	if err != nil {
		t.Fatalf("Solve with Force failed: %v", err)
	}
	if !bytes.Equal(solved.Ciphertext, expected) || !bytes.Equal(readCiphertext(t, out), expected) {
		t.Error("Expected forced output to equal the original challenge")
	}
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*.tmp"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no temporary files, got %v", matches)
	}
}

func TestSolveRequiresDeterminedState(t *testing.T) {
	s, result := setupChallenges(t, configs.SuiteAESCTR)
	data, err := os.ReadFile(result.Files[0])
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, "copy.enc"), data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Two observations of one block carry no relation between blocks.
	target := 0
	_, err = Solve(context.Background(), SolveOptions{
		Settings: s,
		Inputs:   []string{"challenge.1.enc", "copy.enc"},
		Offsets:  []int{0, 0},
		Target:   &target,
		Output:   "out.enc",
	})
	if !errors.Is(err, kerrors.ErrInsufficientData) {
		t.Fatalf("Expected ErrInsufficientData, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "out.enc")); !os.IsNotExist(err) {
		t.Error("Expected no output to be written")
	}
}

func TestSolveSparseOffsets(t *testing.T) {
	s := setupStore(t, configs.SuiteAESCTR, configs.NonceInsecureFixed)
	openOnce(t, s, secrets.InsecureFixedNonce{Value: secrets.DefaultFixedNonce})
	result, err := CreateChallenges(context.Background(), ChallengeOptions{Settings: s, Count: 5})
	if err != nil {
		t.Fatalf("CreateChallenges failed: %v", err)
	}
	expected := readCiphertext(t, result.Files[3])
	if err := os.Remove(result.Files[3]); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	target := 3
	solved, err := Solve(context.Background(), SolveOptions{
		Settings: s,
		Inputs:   []string{"challenge.1.enc,challenge.3.enc"},
		Offsets:  []int{0, 2},
		Target:   &target,
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if filepath.Base(solved.Output) != "challenge.4.enc" {
		t.Errorf("Expected challenge.4.enc, got %s", solved.Output)
	}
	if !bytes.Equal(solved.Ciphertext, expected) {
		t.Error("Predicted challenge 4 does not match")
	}

	if _, err := Verify(context.Background(), VerifyOptions{Settings: s, Artifact: "challenge.4.enc", Block: 4}); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestSolveFromUnlockCodes(t *testing.T) {
	s := setupStore(t, configs.SuiteChaCha20, configs.NonceInsecureFixed)
	src := secrets.InsecureFixedNonce{Value: secrets.DefaultFixedNonce}
	openOnce(t, s, src)
	openOnce(t, s, src)

	// Unlock codes have no derived output; car.3.enc belongs to the next open.
	_, err := Solve(context.Background(), SolveOptions{Settings: s, Inputs: []string{"car.1.enc,car.2.enc"}})
	if !errors.Is(err, kerrors.ErrMalformedInput) {
		t.Fatalf("Expected ErrMalformedInput, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "car.3.enc")); !os.IsNotExist(err) {
		t.Fatal("Expected car.3.enc not to be written")
	}

	solved, err := Solve(context.Background(), SolveOptions{
		Settings: s,
		Inputs:   []string{"car.*.enc"},
		Output:   "predicted.enc",
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if filepath.Base(solved.Output) != "predicted.enc" {
		t.Fatalf("Expected predicted.enc, got %s", solved.Output)
	}

	next := openOnce(t, s, src)
	if filepath.Base(next.Path) != "car.3.enc" {
		t.Errorf("Expected next open to write car.3.enc, got %s", next.Path)
	}
	if !bytes.Equal(next.Ciphertext, solved.Ciphertext) {
		t.Error("Predicted unlock code does not match the real one")
	}
}

func TestSolveNonceMismatch(t *testing.T) {
	s := setupStore(t, configs.SuiteAESCTR, configs.NonceRandom)
	openOnce(t, s, secrets.RandomNonce{})
	openOnce(t, s, secrets.RandomNonce{})

	_, err := Solve(context.Background(), SolveOptions{Settings: s, Inputs: []string{"car.1.enc", "car.2.enc"}})
	if !errors.Is(err, kerrors.ErrNonceMismatch) {
		t.Errorf("Expected ErrNonceMismatch, got %v", err)
	}
}

func TestSolveInsufficientData(t *testing.T) {
	s, _ := setupChallenges(t, configs.SuiteAESCTR)

	_, err := Solve(context.Background(), SolveOptions{Settings: s, Inputs: []string{"challenge.1.enc"}, Output: "out.enc"})
	if !errors.Is(err, kerrors.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "out.enc")); !os.IsNotExist(err) {
		t.Error("Expected no output to be written")
	}
}

func TestSolveOffsetCountMismatch(t *testing.T) {
	s, _ := setupChallenges(t, configs.SuiteAESCTR)
	_, err := Solve(context.Background(), SolveOptions{Settings: s, Offsets: []int{0}})
	if !errors.Is(err, kerrors.ErrMalformedInput) {
		t.Errorf("Expected ErrMalformedInput, got %v", err)
	}
}

func TestVerifyRejectsWrongBlock(t *testing.T) {
	s, result := setupChallenges(t, configs.SuiteAESCTR)

	verified, err := Verify(context.Background(), VerifyOptions{Settings: s, Artifact: result.Files[1]})
	if !errors.Is(err, kerrors.ErrVerificationFailed) {
		t.Fatalf("Expected ErrVerificationFailed, got %v", err)
	}
	if verified == nil || verified.Match {
		t.Error("Expected a populated mismatch result")
	}

	if _, err := Verify(context.Background(), VerifyOptions{Settings: s, Artifact: result.Files[1], Block: 2}); err != nil {
		t.Errorf("Expected challenge 2 to verify as block 2, got %v", err)
	}

	entries, err := audit.ReadEntries(s)
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	last := entries[len(entries)-1]
	if last.Operation != audit.OpVerify || last.Result != "pass" {
		t.Errorf("Expected passing verify entry, got %+v", last)
	}
}
