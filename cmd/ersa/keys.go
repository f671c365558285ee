package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TheusHen/ersa/ersa"
	"github.com/TheusHen/ersa/ersa/keycodec"
)

func (a *app) newKeygenCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair",
		Long: `Generate an RSA key pair (SPKI public key, PKCS#8 private key).

Without --out-dir both keys are printed to stdout. With --out-dir they are
written to public.pem and private.pem; the private key is created with mode
0600.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.facade()
			if err != nil {
				return err
			}
			kp, err := r.CreateKeyPair(cmd.Context(), a.v.GetInt(keyModulusLength))
			if err != nil {
				return err
			}
			fp, err := keycodec.FingerprintPEM(kp.PublicKey)
			if err != nil {
				return err
			}

			if outDir == "" {
				fmt.Fprintln(cmd.OutOrStdout(), kp.PublicKey)
				fmt.Fprintln(cmd.OutOrStdout(), kp.PrivateKey)
			} else {
				if err := writeKeyPair(outDir, kp); err != nil {
					return err
				}
				a.log.WithField("dir", outDir).Info("wrote public.pem and private.pem")
			}
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "fingerprint %s\n", fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory to write public.pem and private.pem into")
	return cmd
}

func writeKeyPair(dir string, kp ersa.KeyPair) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	if err := os.WriteFile(filepath.Join(dir, "public.pem"), []byte(kp.PublicKey), 0o644); err != nil {
		return errors.Wrap(err, "failed to write public key")
	}
	if err := os.WriteFile(filepath.Join(dir, "private.pem"), []byte(kp.PrivateKey), 0o600); err != nil {
		return errors.Wrap(err, "failed to write private key")
	}
	return nil
}

func (a *app) newFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <key.pem>",
		Short: "Print the SHA-256 fingerprint of a key's public half",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to read key")
			}
			fp, err := keycodec.FingerprintPEM(string(b))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fp)
			return nil
		},
	}
}

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <key.pem>...",
		Short: "Check PEM files for public or private key armor",
		Long: `Check each file for SPKI or PKCS#8 armor and try to parse it.

The armor check alone is not a structural validation; the parse result is
reported next to it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *multierror.Error
			out := cmd.OutOrStdout()
			for _, path := range args {
				b, err := os.ReadFile(path)
				if err != nil {
					result = multierror.Append(result, errors.Wrapf(err, "%s", path))
					continue
				}
				text := string(b)

				var kind string
				var parseErr error
				switch {
				case ersa.IsValidPEMPublicKey(text):
					kind = "public"
					_, parseErr = keycodec.ParsePublicKey(text)
				case ersa.IsValidPEMPrivateKey(text):
					kind = "private"
					_, parseErr = keycodec.ParsePrivateKey(text)
				default:
					kind = "invalid"
					parseErr = keycodec.ErrInvalidKeyFormat
				}

				if parseErr != nil {
					color.New(color.FgRed).Fprintf(out, "%s: %s (%v)\n", path, kind, parseErr)
					result = multierror.Append(result, fmt.Errorf("%s: %w", path, parseErr))
					continue
				}
				color.New(color.FgGreen).Fprintf(out, "%s: %s\n", path, kind)
			}
			return result.ErrorOrNil()
		},
	}
}
