package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/crs/internal/application/dto"
)

// tokenCmd exchanges client credentials for a bearer token.
// tokenCmd 用客户端凭证换取访问令牌。
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain an access token using client credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client-id")
		clientSecret, _ := cmd.Flags().GetString("client-secret")

		data, err := callAPI("POST", "/api/v1/auth/token", &dto.TokenRequest{
			ClientID:     clientID,
			ClientSecret: clientSecret,
		})
		if err != nil {
			return err
		}

		var token dto.TokenResponse
		if err := json.Unmarshal(data, &token); err != nil {
			return err
		}
		// Print only the token so the output composes: export CRS_TOKEN=$(crs-admin token ...)
		fmt.Println(token.AccessToken)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("client-id", "", "Client identifier")
	tokenCmd.Flags().String("client-secret", "", "Client secret")
	_ = tokenCmd.MarkFlagRequired("client-id")
	_ = tokenCmd.MarkFlagRequired("client-secret")
	rootCmd.AddCommand(tokenCmd)
}
