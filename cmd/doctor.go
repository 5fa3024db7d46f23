package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common setup issues",
	Long: `Diagnose common setup issues and optionally fix them.

Examples:
  mnemos doctor        # check for issues
  mnemos doctor --fix  # check and auto-fix issues`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fix, _ := cmd.Flags().GetBool("fix")
		return runDoctor(fix)
	},
}

func init() {
	doctorCmd.Flags().Bool("fix", false, "Attempt to automatically fix issues")
}

// redact returns the first n and last n chars of s, or "***" if too short.
func redact(s string, n int) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= n*2 {
		return "***"
	}
	return s[:n] + "..." + s[len(s)-n:]
}

// runDoctor diagnoses common setup issues
func runDoctor(fix bool) error {
	fmt.Println("🔍 mnemos Doctor - Diagnosing Setup")
	if fix {
		fmt.Println("🛠️  Auto-fix enabled")
	}
	fmt.Println()

	issues := 0
	warnings := 0
	fixed := 0

	// 1. Check if binary is in PATH
	fmt.Print("✓ Checking if mnemos is in PATH... ")
	path, err := exec.LookPath("mnemos")
	if err != nil {
		fmt.Println("❌ FAILED")
		fmt.Println("  Issue: mnemos binary not found in PATH")
		fmt.Println("  Fix: Add mnemos to your PATH or use the full path")
		issues++
	} else {
		fmt.Printf("✅ OK (%s)\n", path)
	}

	// 2. Check binary permissions
	fmt.Print("✓ Checking binary permissions... ")
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Println("❌ FAILED")
			fmt.Printf("  Issue: Cannot stat binary: %v\n", err)
			issues++
		} else if info.Mode()&0111 == 0 {
			if fix {
				fmt.Print("🛠️  Fixing... ")
				if err := os.Chmod(path, info.Mode()|0111); err != nil {
					fmt.Printf("❌ FAILED: %v\n", err)
					issues++
				} else {
					fmt.Println("✅ FIXED")
					fixed++
				}
			} else {
				fmt.Println("❌ FAILED")
				fmt.Println("  Issue: Binary is not executable")
				fmt.Printf("  Fix: Run 'chmod +x %s'\n", path)
				issues++
			}
		} else {
			fmt.Println("✅ OK")
		}
	}

	// 3. Check data directory
	fmt.Print("✓ Checking data directory... ")
	dir := dataDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if fix {
			fmt.Print("🛠️  Creating... ")
			if err := os.MkdirAll(dir, 0700); err != nil {
				fmt.Printf("❌ FAILED: %v\n", err)
				issues++
			} else {
				fmt.Println("✅ FIXED")
				fixed++
			}
		} else {
			fmt.Println("⚠️  WARNING")
			fmt.Printf("  Data directory does not exist: %s\n", dir)
			fmt.Println("  It will be created on first run")
			warnings++
		}
	} else {
		fmt.Printf("✅ OK (%s)\n", dir)
	}

	// 4. Check SQLite database
	fmt.Print("✓ Checking SQLite database... ")
	dbPath := filepath.Join(dir, "mnemos.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("⚠️  WARNING")
		fmt.Printf("  Database not found: %s\n", dbPath)
		fmt.Println("  It will be created on first run (mnemos init)")
		warnings++
	} else {
		fmt.Println("✅ OK")
	}

	// 5. Check embedding capability configuration
	fmt.Print("✓ Checking embedding capability... ")
	if url := os.Getenv("MNEMOS_EMBED_URL"); url != "" {
		fmt.Printf("✅ OK (networked: %s, key %s)\n", url, redact(os.Getenv("MNEMOS_EMBED_KEY"), 4))
	} else {
		fmt.Println("✅ OK (local embedder, no network calls)")
	}

	// 6. Check LLM capability configuration
	fmt.Print("✓ Checking LLM capability... ")
	if url := os.Getenv("MNEMOS_LLM_URL"); url != "" {
		fmt.Printf("✅ OK (networked: %s, key %s)\n", url, redact(os.Getenv("MNEMOS_LLM_KEY"), 4))
	} else {
		fmt.Println("⚠️  WARNING (not configured — remember_facts extraction is unavailable)")
		warnings++
	}

	// 7. Test CLI startup
	fmt.Print("✓ Testing mnemos startup... ")
	testCmd := exec.Command("mnemos", "version")
	if err := testCmd.Run(); err != nil {
		fmt.Println("❌ FAILED")
		fmt.Printf("  Issue: Cannot run mnemos: %v\n", err)
		issues++
	} else {
		fmt.Println("✅ OK")
	}

	// 8. Check for common environment issues
	fmt.Print("✓ Checking environment... ")
	if runtime.GOOS == "darwin" && runtime.GOARCH != "arm64" {
		fmt.Println("⚠️  WARNING (running under Rosetta)")
		warnings++
	} else {
		fmt.Printf("✅ OK (%s/%s)\n", runtime.GOOS, runtime.GOARCH)
	}

	// Summary
	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if issues == 0 && warnings == 0 {
		fmt.Println("✅ All checks passed! mnemos is ready to use.")
	} else {
		if fixed > 0 {
			fmt.Printf("🛠️  Auto-fixed %d issue(s)\n", fixed)
		}
		if issues > 0 {
			fmt.Printf("❌ Found %d critical issue(s)\n", issues)
		}
		if warnings > 0 {
			fmt.Printf("⚠️  Found %d warning(s)\n", warnings)
		}
		fmt.Println()
		fmt.Println("Run the suggested fixes above to resolve issues.")
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	if issues > 0 {
		return fmt.Errorf("found %d critical issue(s)", issues)
	}
	return nil
}
