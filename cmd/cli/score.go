package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/crs/internal/application/dto"
)

// scoreCmd invokes a published scoring service with a credit record read
// from a JSON file (or stdin when the path is "-").
// scoreCmd 使用从 JSON 文件读取的信用记录调用已发布的评分服务。
var scoreCmd = &cobra.Command{
	Use:   "score NAME VERSION",
	Short: "Invoke a published scoring service with a credit record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath, _ := cmd.Flags().GetString("input")

		var raw []byte
		var err error
		if inputPath == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(inputPath)
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}

		var record dto.ScoreRequest
		if err := json.Unmarshal(raw, &record); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}

		data, err := callAPI("POST", servicePath(args[0], args[1])+"/score", &record)
		if err != nil {
			return err
		}

		var resp dto.ScoreResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func init() {
	scoreCmd.Flags().String("input", "-", "Path to the JSON record, or - for stdin")
	rootCmd.AddCommand(scoreCmd)
}
