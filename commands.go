package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/timeline/config"
	"github.com/ByLCY/timeline/dsl"
	"github.com/ByLCY/timeline/event"
	"github.com/ByLCY/timeline/layout"
	"github.com/ByLCY/timeline/metrics"
	"github.com/ByLCY/timeline/progress"
	"github.com/ByLCY/timeline/search"
)

const pasteHelp = `Paste your timeline below.
Format example:
-------------------------------------------
date: 1945
Event Title
Event description goes here.

date: March 1945
Another Event
Another description here.
-------------------------------------------
Press Enter twice when done:
`

type globalFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "timeline",
		Short:         "Turn loosely formatted dated events into a visual timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML 配置文件路径")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "在 stderr 输出诊断信息")

	root.AddCommand(newRenderCmd(g), newParseCmd(g), newFindCmd(g))
	return root
}

func (g *globalFlags) logger(w io.Writer) *log.Logger {
	if !g.verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(w, "[timeline] ", log.LstdFlags)
}

// progressSink 返回进度提示。诊断日志与动画共用 stderr，开启 --verbose 时不显示动画。
func (g *globalFlags) progressSink(w io.Writer) progress.Sink {
	if g.verbose {
		return progress.Nop{}
	}
	return progress.NewSpinner(w)
}

// readInput 读取文件；未指定文件时从 stdin 读取粘贴内容。
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("无法打开时间轴文件 %s: %w", args[0], err)
		}
		return string(data), nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), pasteHelp)
	return dsl.ReadBulk(cmd.InOrStdin())
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	var (
		topic     string
		format    string
		out       string
		debugPath string
		noEnhance bool
		width     int
		quiet     bool
		promFile  string
	)
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Parse, enhance, lay out and render a timeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			if format != "" {
				cfg.Output.Format = strings.ToLower(format)
			}
			if width > 0 {
				cfg.Wrap.TargetLength = width
			}
			if noEnhance {
				cfg.Enhancer.Enabled = false
			}
			if promFile != "" {
				cfg.Metrics.Textfile = promFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			r, ext, err := newRenderer(cfg.Output.Format)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("no input provided")
			}

			stderr := cmd.ErrOrStderr()
			p := &pipeline{
				cfg:      cfg,
				topic:    topic,
				enhancer: newEnhancer(cfg.Enhancer),
				renderer: r,
				progress: g.progressSink(stderr),
				metrics:  metrics.New(),
				logger:   g.logger(stderr),
			}
			if !quiet {
				p.summary = cmd.OutOrStdout()
			}

			res, runErr := p.run(cmd.Context(), input)
			if cfg.Metrics.Textfile != "" {
				if err := p.metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					p.logger.Printf("write metrics textfile: %v", err)
				}
			}
			if runErr != nil {
				return runErr
			}

			if debugPath != "" {
				if err := layout.WriteDebugJSON(res.Result, debugPath); err != nil {
					return fmt.Errorf("输出调试 JSON 失败: %w", err)
				}
			}
			path := out
			if path == "" {
				path = outputPath(cfg.Output, topic, ext)
			}
			if err := writeFile(path, res.Data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nTimeline saved as: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "Timeline", "时间轴主题")
	cmd.Flags().StringVarP(&format, "format", "f", "", "输出格式：html | svg | pdf | text")
	cmd.Flags().StringVarP(&out, "out", "o", "", "输出文件路径（默认由 output.name 模板生成）")
	cmd.Flags().StringVar(&debugPath, "debug", "", "布局调试 JSON 输出路径")
	cmd.Flags().BoolVar(&noEnhance, "no-enhance", false, "跳过文本增强")
	cmd.Flags().IntVar(&width, "width", 0, "提示框折行目标宽度（字符）")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "不在 stdout 输出文本时间轴")
	cmd.Flags().StringVar(&promFile, "metrics-textfile", "", "将运行指标写入 Prometheus textfile")
	return cmd
}

type parseOutput struct {
	Parsed  int           `json:"parsed"`
	Events  []event.Event `json:"events"`
	Skipped []string      `json:"skipped,omitempty"`
}

func newParseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse bulk timeline text and print the events as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			batch, err := dsl.ParseString(input, dsl.ParseOptions{Logger: g.logger(cmd.ErrOrStderr())})
			if err != nil {
				return err
			}
			out := parseOutput{Parsed: batch.Parsed, Events: batch.Events}
			for _, s := range batch.Skipped {
				out.Skipped = append(out.Skipped, fmt.Sprintf("line %d: %v", s.Line, s.Err))
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func newFindCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query> [file]",
		Short: "Fuzzy-search events by date and title",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}
			batch, err := dsl.ParseString(input, dsl.ParseOptions{Logger: g.logger(cmd.ErrOrStderr())})
			if err != nil {
				return err
			}
			matches := search.Events(args[0], batch.Events)
			if len(matches) == 0 {
				return fmt.Errorf("no event matches %q", args[0])
			}
			for _, m := range matches {
				fmt.Fprintln(cmd.OutOrStdout(), layout.Header(m.Event))
			}
			return nil
		},
	}
}
