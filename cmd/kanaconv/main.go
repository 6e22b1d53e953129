package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/kanaconv/dict"
	"github.com/hrygo/kanaconv/engine"
	"github.com/hrygo/kanaconv/internal/profile"
	"github.com/hrygo/kanaconv/internal/version"
	"github.com/hrygo/kanaconv/langmodel"
	"github.com/hrygo/kanaconv/lattice"
	"github.com/hrygo/kanaconv/romkan"
	"github.com/hrygo/kanaconv/userlm"
)

var rootCmd = &cobra.Command{
	Use:   "kanaconv",
	Short: "Kana-kanji conversion engine: statistical lattice decoding over rōmaji input.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Try to load .env file from current directory (ignore error if file doesn't exist)
		_ = godotenv.Load()
		return nil
	},
}

func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:      viper.GetString("mode"),
		Data:      viper.GetString("data"),
		UserLMDir: viper.GetString("user-lm-dir"),
	}
	p.FromEnv()
	p.Version = version.GetCurrentVersion(p.Mode)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// buildEngine loads every artifact named by the profile. Any load failure is
// fatal: a partial language model must never serve conversions. The resolver
// is returned alongside the engine for tools that inspect the lattice
// directly.
func buildEngine(p *profile.Profile) (*engine.Engine, *lattice.Resolver, *userlm.UserLanguageModel, error) {
	systemUnigram, err := langmodel.LoadSystemUnigramLM(p.UnigramLMPath())
	if err != nil {
		return nil, nil, nil, err
	}
	systemBigram, err := langmodel.LoadSystemBigramLM(p.BigramLMPath())
	if err != nil {
		return nil, nil, nil, err
	}
	systemDict, err := dict.LoadBinaryDict(p.SystemDictPath())
	if err != nil {
		return nil, nil, nil, err
	}
	slog.Info("loaded system artifacts",
		"unigrams", systemUnigram.Size(),
		"bigrams", systemBigram.Size(),
		"dictEntries", systemDict.Size())

	singleTermDict, err := dict.LoadBinaryDict(p.SingleTermDictPath())
	if err != nil {
		return nil, nil, nil, err
	}

	user := userlm.NewUserLanguageModel(p.UserUnigramPath(), p.UserBigramPath())
	if err := user.LoadUnigram(); err != nil {
		return nil, nil, nil, err
	}
	if err := user.LoadBigram(); err != nil {
		return nil, nil, nil, err
	}

	resolver := lattice.NewResolver(
		user,
		systemUnigram,
		systemBigram,
		[]*dict.BinaryDict{systemDict},
		[]*dict.BinaryDict{singleTermDict},
	)
	return engine.New(resolver, romkan.NewConverter(nil)), resolver, user, nil
}

func init() {
	viper.SetDefault("mode", "prod")

	rootCmd.PersistentFlags().String("mode", "prod", `mode, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("data", "", "directory holding the system LM and dictionary tries")
	rootCmd.PersistentFlags().String("user-lm-dir", "", "directory holding the user language model files")

	for _, flag := range []string{"mode", "data", "user-lm-dir"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(convertCmd, makeDictCmd, makeLMCmd, dumpUnigramCmd, benchCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("kanaconv %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
