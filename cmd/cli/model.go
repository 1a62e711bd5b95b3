package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/turtacn/crs/internal/application/dto"
)

// modelCmd groups model lifecycle operations.
// modelCmd 汇集模型生命周期操作。
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Commands for training and inspecting models",
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a credit default model from a CSV dataset on the server",
	Long: `Submits a training job against a CSV dataset readable by the server.
The dataset must carry the account_id and default columns followed by the
feature columns. Unset hyperparameters fall back to the server's defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &dto.TrainModelRequest{}
		req.DatasetPath, _ = cmd.Flags().GetString("dataset")
		req.Rounds, _ = cmd.Flags().GetInt("rounds")
		req.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
		req.LearningRate, _ = cmd.Flags().GetFloat64("learning-rate")
		req.HoldoutFraction, _ = cmd.Flags().GetFloat64("holdout")
		req.Seed, _ = cmd.Flags().GetInt64("seed")

		data, err := callAPI("POST", "/api/v1/models/train", req)
		if err != nil {
			return err
		}

		var resp dto.TrainModelResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete trained models no service references anymore",
	Long: `Removes model artifacts that no published service is bound to and
that are older than the retention window. Referenced artifacts are never
touched, whatever their age.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keepDays, _ := cmd.Flags().GetInt("keep-days")

		data, err := callAPI("POST", "/api/v1/models/prune", &dto.PruneModelsRequest{KeepDays: keepDays})
		if err != nil {
			return err
		}

		var resp dto.PruneModelsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func init() {
	trainCmd.Flags().String("dataset", "", "Path to the training CSV, as seen by the server")
	trainCmd.Flags().Int("rounds", 0, "Boosting rounds (0 uses the server default)")
	trainCmd.Flags().Int("max-depth", 0, "Maximum tree depth (0 uses the server default)")
	trainCmd.Flags().Float64("learning-rate", 0, "Shrinkage per round (0 uses the server default)")
	trainCmd.Flags().Float64("holdout", 0, "Holdout fraction for evaluation (0 uses the server default)")
	trainCmd.Flags().Int64("seed", 0, "Split seed (0 uses the server default)")
	_ = trainCmd.MarkFlagRequired("dataset")

	pruneCmd.Flags().Int("keep-days", 30, "Retention window in days for unreferenced artifacts")

	modelCmd.AddCommand(trainCmd, pruneCmd)
	rootCmd.AddCommand(modelCmd)
}
