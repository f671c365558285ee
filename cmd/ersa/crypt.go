package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TheusHen/ersa/ersa"
)

// readInput returns --text when set, otherwise all of stdin.
func readInput(cmd *cobra.Command, text string) (string, error) {
	if text != "" {
		return text, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, "failed to read stdin")
	}
	return string(b), nil
}

type transform func(ctx context.Context, r *ersa.RSA, in string) (string, error)

// newTransformCmd builds the four string commands, which differ only in the
// facade call they make.
func (a *app) newTransformCmd(use, short string, trimInput bool, fn transform) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.facade()
			if err != nil {
				return err
			}
			in, err := readInput(cmd, text)
			if err != nil {
				return err
			}
			if trimInput {
				in = strings.TrimSpace(in)
			}
			out, err := fn(cmd.Context(), r, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "input text (default: read stdin)")
	return cmd
}

func (a *app) newEncryptCmd() *cobra.Command {
	var chunked bool
	cmd := a.newTransformCmd("encrypt", "Encrypt text with a public key (RSA-OAEP/SHA-1)", false,
		func(ctx context.Context, r *ersa.RSA, in string) (string, error) {
			if !chunked {
				return r.EncryptWithPublicKey(ctx, in, "")
			}
			chunks := ersa.SplitIntoChunks(in, a.v.GetInt(keyChunkSize))
			out := make([]string, 0, len(chunks))
			for _, c := range chunks {
				ct, err := r.EncryptWithPublicKey(ctx, c, "")
				if err != nil {
					return "", err
				}
				out = append(out, ct)
			}
			return strings.Join(out, "\n"), nil
		})
	cmd.Long = `Encrypt text with the public key given by --public-key.

With --chunked the input is split into --chunk-size byte pieces and one
ciphertext is printed per line. The chunks carry no sequence numbers:
dropping or reordering lines corrupts the decrypted text silently.`
	cmd.Flags().BoolVar(&chunked, "chunked", false, "split input into chunks, one ciphertext per line")
	return cmd
}

func (a *app) newDecryptCmd() *cobra.Command {
	var chunked bool
	cmd := a.newTransformCmd("decrypt", "Decrypt base64 ciphertext with a private key", true,
		func(ctx context.Context, r *ersa.RSA, in string) (string, error) {
			if !chunked {
				return r.DecryptWithPrivateKey(ctx, in, "")
			}
			var chunks []string
			for _, line := range strings.Split(in, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				pt, err := r.DecryptWithPrivateKey(ctx, line, "")
				if err != nil {
					return "", err
				}
				chunks = append(chunks, pt)
			}
			return ersa.JoinChunks(chunks), nil
		})
	cmd.Flags().BoolVar(&chunked, "chunked", false, "decrypt one ciphertext per line and join the results")
	return cmd
}

func (a *app) newEncryptPrivateCmd() *cobra.Command {
	return a.newTransformCmd("encrypt-private", "Transform text with a private key (PKCS#1 v1.5, native adapter only)", false,
		func(ctx context.Context, r *ersa.RSA, in string) (string, error) {
			return r.EncryptWithPrivateKey(ctx, in, "")
		})
}

func (a *app) newDecryptPublicCmd() *cobra.Command {
	return a.newTransformCmd("decrypt-public", "Recover text produced by encrypt-private (native adapter only)", true,
		func(ctx context.Context, r *ersa.RSA, in string) (string, error) {
			return r.DecryptWithPublicKey(ctx, in, "")
		})
}

func (a *app) newSealCmd() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt a payload of any size into an envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.facade()
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd, inPath)
			if err != nil {
				return err
			}
			env, err := r.Seal(cmd.Context(), payload, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), env)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "file to seal (default: read stdin)")
	return cmd
}

func (a *app) newOpenCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt an envelope produced by seal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.facade()
			if err != nil {
				return err
			}
			in, err := readInput(cmd, "")
			if err != nil {
				return err
			}
			payload, err := r.Open(cmd.Context(), strings.TrimSpace(in), "")
			if err != nil {
				return err
			}
			if outPath != "" {
				return errors.Wrap(os.WriteFile(outPath, payload, 0o600), "failed to write payload")
			}
			_, err = cmd.OutOrStdout().Write(payload)
			return err
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "file to write the payload to (default: stdout)")
	return cmd
}

func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		return b, errors.Wrap(err, "failed to read input file")
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	return b, errors.Wrap(err, "failed to read stdin")
}
