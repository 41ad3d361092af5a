// Converts labelme rectangle annotations into YOLO training datasets and estimates how much
// labeled data a target accuracy still needs.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/annolab/yoloset"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "yoloset",
		Short:         "labelme to YOLO dataset converter",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(qualityCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func convertCmd() *cobra.Command {
	var opts yoloset.Options
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a labelme directory into a YOLO dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InputDir = filepath.Clean(opts.InputDir)
			opts.OutputDir = filepath.Clean(opts.OutputDir)
			if opts.InputDir == opts.OutputDir {
				return fmt.Errorf("the input and output paths cannot be identical")
			}

			report, err := yoloset.Convert(opts)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(report)
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.InputDir, "input", "i", "", "the labelme input directory")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "the dataset output directory")
	cmd.Flags().Float64VarP(&opts.TrainRatio, "ratio", "r", 0.8, "the fraction of pairs assigned to training, in (0,1)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "the seed for the train/val shuffle")
	cmd.Flags().IntVar(&opts.ResizeLongerSide, "resize-longer", 0, "resize images so the longer side matches this length (zero keeps originals)")
	cmd.Flags().IntVar(&opts.JPEGQuality, "jpeg-quality", 90, "the quality for re-encoded JPEGs [1, 100]")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "the number of conversion workers (zero selects automatically)")
	cmd.Flags().BoolVar(&opts.TFRecords, "tfrecord", false, "also export each split as TFRecord files")
	cmd.Flags().IntVar(&opts.TFRecordShards, "num-shards", 1, "the number of TFRecord shard files per split")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func validateCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate [dataset-dir]",
		Short: "Validate a converted YOLO dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := yoloset.ValidateDataset(filepath.Clean(args[0]), nil)

			if asJSON {
				return printJSON(report)
			}
			for _, c := range report.Checks {
				status := "ok"
				if !c.Passed {
					status = fmt.Sprintf("%d anomalies", c.Anomalies)
				}
				fmt.Printf("%-28s %s\n", c.Name, status)
				for _, d := range c.Details {
					fmt.Printf("    %s\n", d)
				}
			}
			if !report.Passed {
				return fmt.Errorf("validation found %d anomalies", report.Anomalies)
			}
			fmt.Println("Dataset is valid.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func estimateCmd() *cobra.Command {
	var target, imageSize int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate [input-dir]",
		Short: "Estimate how many labeled examples each class still needs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := yoloset.EstimateDataset(filepath.Clean(args[0]), target, imageSize)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(est)
			}

			fmt.Printf("Labeled images: %d  unlabeled: %d  label rate: %.1f%%\n",
				est.LabeledImages, est.UnlabeledImages, est.LabelRate)
			fmt.Printf("Target: %d%% accuracy at %dx%d\n\n", est.TargetAccuracy, est.ImageSize, est.ImageSize)
			for _, c := range est.Classes {
				fmt.Printf("%-20s %7s  have %4d / need %4d  (%.0f%%)\n",
					c.Label, c.Complexity, c.Current, c.Needed, c.Progress)
			}
			fmt.Printf("\nTotal: %d of %d recommended labels\n", est.TotalCurrent, est.TotalNeeded)
			return nil
		},
	}

	cmd.Flags().IntVar(&target, "target", 70, "the target accuracy percent {60, 70, 80}")
	cmd.Flags().IntVar(&imageSize, "image-size", 640, "the training image size {320, 640, 1280}")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full estimate as JSON")
	return cmd
}

func qualityCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "quality [input-dir]",
		Short: "Screen the images in a directory for quality problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := yoloset.CheckDatasetQuality(filepath.Clean(args[0]), yoloset.DefaultQualityThresholds())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(report)
			}

			fmt.Printf("Checked %d images, %d with issues\n", report.Checked, report.WithIssues)
			issues := make([]string, 0, len(report.IssueCounts))
			for issue := range report.IssueCounts {
				issues = append(issues, issue)
			}
			sort.Strings(issues)
			for _, issue := range issues {
				fmt.Printf("  %-20s %d\n", issue, report.IssueCounts[issue])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server for the interactive UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return yoloset.NewServer(addr).Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:8080", "the server address")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(r *yoloset.Report) {
	fmt.Printf("Run %s\n", r.RunID)
	fmt.Printf("Pairs: %d found, %d converted (%d train, %d val), %d skipped\n",
		r.TotalPairs, r.Converted, r.TrainCount, r.ValCount, r.Skipped)
	fmt.Printf("Shapes: %d written, %d skipped\n", r.ShapesWritten, r.ShapesSkipped)
	fmt.Printf("Classes: %d\n", r.ClassCount)
	for i, name := range r.Classes {
		fmt.Printf("  %3d %s\n", i, name)
	}
	if len(r.OrphanImages) > 0 {
		fmt.Printf("Unlabeled images: %d\n", len(r.OrphanImages))
	}
	if len(r.OrphanAnnotations) > 0 {
		fmt.Printf("Orphan annotations: %d\n", len(r.OrphanAnnotations))
	}
	for _, s := range r.SkippedPairs {
		fmt.Printf("  skipped %s: %s (%s)\n", s.Base, s.Reason, s.Detail)
	}
	if r.Validation != nil {
		if r.Validation.Passed {
			fmt.Println("Validation: passed")
		} else {
			fmt.Printf("Validation: %d anomalies\n", r.Validation.Anomalies)
		}
	}
}
