package main

import (
	"fmt"
	"os"

	"github.com/olivier-w/codecam/internal/video"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:   "codecam [input]",
		Short: "Live camera view drawn with code glyphs",
		Long: "codecam renders a camera, video file, stream or image as a mosaic of\n" +
			"binary digits, regex fragments or source keywords, and captures PNGs.\n" +
			"Pass \"" + video.PatternInput + "\" as input for a synthetic test pattern.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.resolve(inputArg(args))
			if err != nil {
				return err
			}
			return runLive(cmd.Context(), opts)
		},
	}
	addCommonFlags(root, &f)
	root.Flags().IntVar(&f.fps, "fps", 60, "display refresh rate")
	root.Flags().BoolVar(&f.mute, "mute", false, "no shutter sound")

	snap := &cobra.Command{
		Use:   "snap [input]",
		Short: "Render one frame straight to a PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.fps = 60
			opts, err := f.resolve(inputArg(args))
			if err != nil {
				return err
			}
			return runSnap(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	addCommonFlags(snap, &f)
	snap.Flags().IntVar(&f.cols, "cols", 120, "mosaic width in glyph cells")
	snap.Flags().IntVar(&f.rows, "rows", 0, "mosaic height in glyph cells (0 keeps the aspect ratio)")
	snap.Flags().StringVarP(&f.out, "output", "o", "", "output file (default: a timestamped name in --dir)")
	root.AddCommand(snap)

	return root
}

func addCommonFlags(cmd *cobra.Command, f *flags) {
	fs := cmd.Flags()
	fs.StringVar(&f.style, "style", "binary", "glyph style: binary, regex or source")
	fs.IntVar(&f.timer, "timer", 0, "capture delay in seconds: 0, 3, 5 or 10")
	fs.StringVar(&f.size, "size", "", "decode size WIDTHxHEIGHT (default 1280x720)")
	fs.StringVar(&f.format, "format", "", "ffmpeg input format (v4l2, avfoundation, dshow, ...)")
	fs.StringVar(&f.logPath, "log", "", "write debug logs to this file")
	fs.StringVar(&f.dir, "dir", ".", "directory for captures")
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
