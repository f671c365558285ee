package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheusHen/ersa/ersa"
	"github.com/TheusHen/ersa/ersa/adapter"
)

const (
	keyConfig        = "config"
	keyAdapter       = "adapter"
	keyModulusLength = "modulus-length"
	keyPublicKey     = "public-key"
	keyPrivateKey    = "private-key"
	keyChunkSize     = "chunk-size"
	keyVerbose       = "verbose"

	// defaultChunkSize fits one OAEP/SHA-1 block of a 2048-bit key.
	defaultChunkSize = 190
)

// app carries the state shared by every subcommand.
type app struct {
	v   *viper.Viper
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:   "ersa",
		Short: "RSA key generation, encryption and decryption",
		Long: `ersa generates RSA key pairs and encrypts or decrypts text with them.

Keys are PEM files (SPKI public keys, PKCS#8 private keys); ciphertexts are
base64 strings. Settings come from flags, ERSA_* environment variables or an
ersa.yaml / ersa.toml file in the working directory or ~/.config/ersa.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "config file (default: ./ersa.yaml or ~/.config/ersa/ersa.yaml)")
	flags.String(keyAdapter, "native", "crypto adapter: native or platform")
	flags.Int(keyModulusLength, adapter.DefaultModulusLength, "modulus length in bits for new keys")
	flags.String(keyPublicKey, "", "path to a PEM public key")
	flags.String(keyPrivateKey, "", "path to a PEM private key")
	flags.Int(keyChunkSize, defaultChunkSize, "chunk size in bytes for --chunked")
	flags.BoolP(keyVerbose, "v", false, "enable debug logging")

	root.AddCommand(
		a.newKeygenCmd(),
		a.newEncryptCmd(),
		a.newDecryptCmd(),
		a.newEncryptPrivateCmd(),
		a.newDecryptPublicCmd(),
		a.newSealCmd(),
		a.newOpenCmd(),
		a.newFingerprintCmd(),
		a.newValidateCmd(),
	)
	return root
}

func (a *app) initConfig(cmd *cobra.Command) error {
	v := a.v
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.SetEnvPrefix("ERSA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString(keyConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("ersa")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ersa"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "failed to read config")
		}
	}

	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetLevel(logrus.InfoLevel)
	if v.GetBool(keyVerbose) {
		a.log.SetLevel(logrus.DebugLevel)
	}
	if f := v.ConfigFileUsed(); f != "" {
		a.log.WithField("file", f).Debug("loaded config")
	}
	return a.validateSettings()
}

func (a *app) validateSettings() error {
	var result *multierror.Error
	switch a.v.GetString(keyAdapter) {
	case "native", "platform":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown adapter %q", a.v.GetString(keyAdapter)))
	}
	if a.v.GetInt(keyChunkSize) <= 0 {
		result = multierror.Append(result, fmt.Errorf("chunk size must be positive"))
	}
	return result.ErrorOrNil()
}

func (a *app) newAdapter() adapter.Adapter {
	if a.v.GetString(keyAdapter) == "platform" {
		return adapter.NewPlatform()
	}
	return adapter.NewNative()
}

// facade builds an ersa.RSA with the configured key files as defaults.
func (a *app) facade() (*ersa.RSA, error) {
	pub, err := readOptional(a.v.GetString(keyPublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read public key")
	}
	priv, err := readOptional(a.v.GetString(keyPrivateKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read private key")
	}
	return ersa.New(ersa.Config{
		PublicKey:     pub,
		PrivateKey:    priv,
		ModulusLength: a.v.GetInt(keyModulusLength),
		Adapter:       a.newAdapter(),
		Logger:        a.log,
	})
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
