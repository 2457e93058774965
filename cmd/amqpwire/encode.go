package main

import (
	"encoding/hex"
	"fmt"

	"github.com/danmuck/amqpwire/internal/config"
	"github.com/danmuck/amqpwire/internal/document"
	"github.com/danmuck/amqpwire/internal/protocol"
	"github.com/danmuck/amqpwire/internal/protocol/method"
	"github.com/danmuck/amqpwire/internal/protocol/sink"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type encodeFlags struct {
	format string
	output string
}

func (f *encodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "document format: toml, yaml (default from extension)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output: hex, dump, raw (default from config)")
}

func (f *encodeFlags) load(path string) (*document.Document, error) {
	var format document.Format
	if f.format != "" {
		parsed, err := document.ParseFormat(f.format)
		if err != nil {
			return nil, err
		}
		format = parsed
	}
	return document.Load(path, format)
}

func newEncodeCmd(a *app) *cobra.Command {
	flags := &encodeFlags{}
	cmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Encode the method arguments of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := flags.load(args[0])
			if err != nil {
				return err
			}
			call, err := doc.Call()
			if err != nil {
				return err
			}
			return a.emit(cmd, flags.output, func(s sink.Sink) (uint64, error) {
				return method.Encode(s, call, a.cfg.WriterOptions()...)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newTableCmd(a *app) *cobra.Command {
	flags := &encodeFlags{}
	cmd := &cobra.Command{
		Use:   "table <file>",
		Short: "Encode the field table of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := flags.load(args[0])
			if err != nil {
				return err
			}
			table, err := doc.Table()
			if err != nil {
				return err
			}
			return a.emit(cmd, flags.output, func(s sink.Sink) (uint64, error) {
				meter := sink.NewMetered(s)
				w := protocol.NewValueWriter(meter, a.cfg.WriterOptions()...)
				if err := w.WriteTable(table); err != nil {
					return meter.Len(), err
				}
				return meter.Len(), w.Flush()
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// emit runs encodeTo against the sink the output format needs and prints
// the result.
func (a *app) emit(cmd *cobra.Command, output string, encodeTo func(sink.Sink) (uint64, error)) error {
	if output == "" {
		output = a.cfg.Encode.Output
	}
	if err := config.ValidateOutput(output); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if output == config.OutputRaw {
		n, err := encodeTo(sink.NewStream(out, a.cfg.Encode.SinkBufferSize))
		if err != nil {
			return err
		}
		log.Info().Str("cmd", cmd.Name()).Uint64("bytes", n).Msg("encoded")
		return nil
	}

	var buf sink.Buffer
	n, err := encodeTo(&buf)
	if err != nil {
		return err
	}
	if output == config.OutputDump {
		fmt.Fprint(out, hex.Dump(buf.Bytes()))
	} else {
		fmt.Fprintln(out, hex.EncodeToString(buf.Bytes()))
	}
	log.Info().Str("cmd", cmd.Name()).Uint64("bytes", n).Msg("encoded")
	return nil
}
