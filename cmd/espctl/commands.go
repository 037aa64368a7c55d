package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/taoyao-code/esp-gateway/internal/api"
	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
	"github.com/taoyao-code/esp-gateway/internal/replay"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "espctl",
		Short:         "Decode Valentine One ESP bus packets",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDecodeCmd(), newReplayCmd(), newRegistryCmd())
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type decodedFrame struct {
	Frame api.FrameView `json:"frame"`
	Kind  string        `json:"kind,omitempty"`
	Value esp.Value     `json:"value,omitempty"`
	Error string        `json:"error,omitempty"`
}

func newDecodeCmd() *cobra.Command {
	var stream bool
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode one frame, or every frame in a byte stream with --stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := esp.ParseHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid hex: %w", err)
			}
			var envs []*esp.Envelope
			if stream {
				d := esp.NewStreamDecoder(0)
				var rejects []error
				d.OnReject(func(err error) { rejects = append(rejects, err) })
				if envs, err = d.Feed(raw); err != nil {
					return err
				}
				for _, r := range rejects {
					fmt.Fprintln(cmd.ErrOrStderr(), "rejected:", r)
				}
			} else {
				env, err := esp.Parse(raw)
				if err != nil {
					return err
				}
				envs = []*esp.Envelope{env}
			}

			out := make([]decodedFrame, 0, len(envs))
			var decodeErr error
			for _, env := range envs {
				f := decodedFrame{Frame: api.NewFrameView(env)}
				if v, err := esp.Decode(env); err != nil {
					f.Error = err.Error()
					decodeErr = errors.Join(decodeErr, err)
				} else {
					f.Kind, f.Value = esp.KindOf(v), v
				}
				out = append(out, f)
			}
			var werr error
			if stream {
				werr = writeJSON(cmd.OutOrStdout(), out)
			} else {
				werr = writeJSON(cmd.OutOrStdout(), out[0])
			}
			return errors.Join(werr, decodeErr)
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "treat input as a raw bus capture with noise and multiple frames")
	return cmd
}

func newReplayCmd() *cobra.Command {
	var failedOnly bool
	cmd := &cobra.Command{
		Use:   "replay <corpus.yaml>",
		Short: "Run a YAML packet corpus and report mismatches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := replay.Load(args[0])
			if err != nil {
				return err
			}
			results := corpus.Run()
			passed, failed := replay.Summary(results)
			shown := results
			if failedOnly {
				shown = shown[:0:0]
				for _, r := range results {
					if !r.Pass {
						shown = append(shown, r)
					}
				}
			}
			if err := writeJSON(cmd.OutOrStdout(), map[string]any{
				"corpus":  corpus.Name,
				"passed":  passed,
				"failed":  failed,
				"results": shown,
			}); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cases failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only print failing cases")
	return cmd
}

func newRegistryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "List known devices and packet types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"devices":      api.DeviceRegistry(),
				"packet_types": api.PacketTypeRegistry(),
			})
		},
	}
}
