package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/t4ke0/stegno/v2/internal/cipher"
	"github.com/t4ke0/stegno/v2/internal/png"
)

type encodeOptions struct {
	chunkType  string
	key        string
	passphrase string
	file       string
	output     string
	beforeIEND bool
}

type decodeOptions struct {
	chunkType  string
	key        string
	passphrase string
	output     string
}

type removeOptions struct {
	chunkType string
	output    string
}

func (a *app) encodeCommand() *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode <png> [message]",
		Short: "Hide a message or file in a new chunk",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyDefaults(cmd, &opts.chunkType, &opts.key)
			if !cmd.Flags().Changed("before-iend") {
				opts.beforeIEND = a.cfg.InsertBeforeIEND
			}

			var data []byte
			switch {
			case opts.file != "":
				b, err := os.ReadFile(opts.file)
				if err != nil {
					return errors.Wrapf(err, "reading %s", opts.file)
				}
				data = b
			case len(args) == 2:
				data = []byte(args[1])
			default:
				return errors.New("nothing to hide: pass a message or --file")
			}

			return a.encode(args[0], data, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.chunkType, "type", "t", "", "chunk type to write (default from config, stEg)")
	flags.StringVarP(&opts.key, "key", "k", "", "XOR key applied to the message")
	flags.StringVar(&opts.passphrase, "passphrase", "", "seal the message with AES-GCM under this passphrase")
	flags.StringVarP(&opts.file, "file", "f", "", "hide the contents of this file instead of a message")
	flags.StringVarP(&opts.output, "output", "o", "", "write the result here instead of overwriting <png>")
	flags.BoolVar(&opts.beforeIEND, "before-iend", false, "insert the chunk before IEND instead of appending it")

	return cmd
}

func (a *app) decodeCommand() *cobra.Command {
	opts := &decodeOptions{}

	cmd := &cobra.Command{
		Use:   "decode <png>",
		Short: "Print the message hidden in a chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyDefaults(cmd, &opts.chunkType, &opts.key)
			return a.decode(args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.chunkType, "type", "t", "", "chunk type to read (default from config, stEg)")
	flags.StringVarP(&opts.key, "key", "k", "", "XOR key the message was encoded with")
	flags.StringVar(&opts.passphrase, "passphrase", "", "passphrase the message was sealed with")
	flags.StringVarP(&opts.output, "output", "o", "", "write the recovered bytes to this file instead of printing them")

	return cmd
}

func (a *app) removeCommand() *cobra.Command {
	opts := &removeOptions{}

	cmd := &cobra.Command{
		Use:   "remove <png>",
		Short: "Remove the first chunk of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyDefaults(cmd, &opts.chunkType, nil)
			return a.remove(args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.chunkType, "type", "t", "", "chunk type to remove (default from config, stEg)")
	flags.StringVarP(&opts.output, "output", "o", "", "write the result here instead of overwriting <png>")

	return cmd
}

func (a *app) printCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:     "print <png>",
		Aliases: []string{"list"},
		Short:   "List every chunk of a PNG file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.print(args[0], raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print one chunk summary block per chunk instead of a table")

	return cmd
}

// applyDefaults fills flags the user did not set from the loaded config.
func (a *app) applyDefaults(cmd *cobra.Command, chunkType, key *string) {
	if chunkType != nil && !cmd.Flags().Changed("type") {
		*chunkType = a.cfg.ChunkType
	}
	if key != nil && !cmd.Flags().Changed("key") {
		*key = a.cfg.Key
	}
}

func (a *app) encode(path string, message []byte, opts *encodeOptions) error {
	typ, err := validChunkType(opts.chunkType)
	if err != nil {
		return err
	}

	p, err := readPNG(path)
	if err != nil {
		return err
	}

	data := cipher.XOR(message, opts.key)
	if opts.passphrase != "" {
		data, err = cipher.NewSealer(a.cfg.KDFIterations).Seal(data, opts.passphrase)
		if err != nil {
			return errors.Wrap(err, "sealing message")
		}
	}

	chunk := png.NewChunk(typ, data)
	if opts.beforeIEND {
		p.InsertBeforeEnd(chunk)
	} else {
		p.AppendChunk(chunk)
	}

	a.log.Debug().
		Str("type", typ.String()).
		Uint32("length", chunk.Length()).
		Uint32("crc", chunk.CRC()).
		Bool("sealed", opts.passphrase != "").
		Msg("chunk built")

	out := path
	if opts.output != "" {
		out = opts.output
	}
	if err := writePNG(out, p); err != nil {
		return err
	}

	a.log.Info().Msgf("[+] chunk type '%s' added, %s written", typ, out)
	return nil
}

func (a *app) decode(path string, opts *decodeOptions) error {
	p, err := readPNG(path)
	if err != nil {
		return err
	}

	chunk := p.ChunkByType(opts.chunkType)
	if chunk == nil {
		fmt.Fprintf(a.stdout, "No message for chunk type '%s'\n", opts.chunkType)
		return nil
	}

	data := chunk.Data()
	if opts.passphrase != "" {
		data, err = cipher.NewSealer(a.cfg.KDFIterations).Open(data, opts.passphrase)
		if err != nil {
			return err
		}
	}
	data = cipher.XOR(data, opts.key)

	if opts.output != "" {
		if err := os.WriteFile(opts.output, data, 0666); err != nil {
			return errors.Wrapf(err, "writing %s", opts.output)
		}
		a.log.Info().Msgf("[+] %s written", opts.output)
		return nil
	}

	if !utf8.Valid(data) {
		return errors.Wrapf(png.ErrTextDecode, "chunk %s (wrong key, or use --output for binary data)", opts.chunkType)
	}

	fmt.Fprintf(a.stdout, "Decoded message: %s\n", data)
	return nil
}

func (a *app) remove(path string, opts *removeOptions) error {
	p, err := readPNG(path)
	if err != nil {
		return err
	}

	if _, err := p.RemoveChunk(opts.chunkType); err != nil {
		return err
	}

	out := path
	if opts.output != "" {
		out = opts.output
	}
	if err := writePNG(out, p); err != nil {
		return err
	}

	a.log.Info().Msgf("[+] chunk type '%s' removed, %s written", opts.chunkType, out)
	return nil
}

func (a *app) print(path string, raw bool) error {
	p, err := readPNG(path)
	if err != nil {
		return err
	}

	if raw {
		fmt.Fprintln(a.stdout, p)
		return nil
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("#", "Type", "Length", "Size", "CRC", "Critical", "Public", "Safe to copy")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt).WithWriter(a.stdout)

	for i, c := range p.Chunks() {
		typ := c.Type()
		tbl.AddRow(i, typ, c.Length(), humanize.Bytes(uint64(c.Length())),
			fmt.Sprintf("%08x", c.CRC()), typ.IsCritical(), typ.IsPublic(), typ.IsSafeToCopy())
	}
	tbl.Print()

	return nil
}

// validChunkType parses name and rejects types a reader would refuse.
func validChunkType(name string) (png.ChunkType, error) {
	typ, err := png.ParseChunkType(name)
	if err != nil {
		return png.ChunkType{}, err
	}
	if len(name) != 4 || !typ.IsValid() {
		return png.ChunkType{}, errors.Wrapf(png.ErrInvalidType, "%q: need 4 letters with an uppercase third letter", name)
	}

	return typ, nil
}

func readPNG(path string) (*png.PNG, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	p, err := png.Parse(b)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	return p, nil
}

func writePNG(path string, p *png.PNG) error {
	if err := os.WriteFile(path, p.Marshal(), 0666); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
