package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/crs/internal/application/dto"
)

// serviceCmd groups scoring service lifecycle operations: publish, list,
// fetch, model update, and retire.
// serviceCmd 汇集评分服务的生命周期操作：发布、列表、查询、模型更新和下线。
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Commands for managing published scoring services",
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a trained model as a named, versioned scoring service",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &dto.PublishServiceRequest{}
		req.Name, _ = cmd.Flags().GetString("name")
		req.Version, _ = cmd.Flags().GetString("version")
		req.ModelID, _ = cmd.Flags().GetString("model-id")
		req.Description, _ = cmd.Flags().GetString("description")

		data, err := callAPI("POST", "/api/v1/services", req)
		if err != nil {
			return err
		}
		var svc dto.ServiceResponse
		if err := json.Unmarshal(data, &svc); err != nil {
			return err
		}
		return printJSON(svc)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published scoring services",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		name, _ := cmd.Flags().GetString("name")

		query := url.Values{}
		query.Set("page", fmt.Sprintf("%d", page))
		query.Set("page_size", fmt.Sprintf("%d", pageSize))
		if name != "" {
			query.Set("name", name)
		}

		data, err := callAPI("GET", "/api/v1/services?"+query.Encode(), nil)
		if err != nil {
			return err
		}
		var list dto.ListServicesResponse
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		return printJSON(list)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch NAME VERSION",
	Short: "Fetch a published scoring service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := callAPI("GET", servicePath(args[0], args[1]), nil)
		if err != nil {
			return err
		}
		var svc dto.ServiceResponse
		if err := json.Unmarshal(data, &svc); err != nil {
			return err
		}
		return printJSON(svc)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update NAME VERSION",
	Short: "Rebind a service to a new model without changing its version",
	Long: `Points an existing service at a different trained model. The
--generation flag must match the service's current generation; a stale value
is rejected so concurrent updates cannot silently overwrite each other.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &dto.UpdateModelRequest{}
		req.ModelID, _ = cmd.Flags().GetString("model-id")
		req.ExpectedGeneration, _ = cmd.Flags().GetInt64("generation")

		data, err := callAPI("PUT", servicePath(args[0], args[1])+"/model", req)
		if err != nil {
			return err
		}
		var svc dto.ServiceResponse
		if err := json.Unmarshal(data, &svc); err != nil {
			return err
		}
		return printJSON(svc)
	},
}

var retireCmd = &cobra.Command{
	Use:   "retire NAME VERSION",
	Short: "Delete a published scoring service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := callAPI("DELETE", servicePath(args[0], args[1]), nil); err != nil {
			return err
		}
		fmt.Printf("service %s/%s retired\n", args[0], args[1])
		return nil
	},
}

var swaggerCmd = &cobra.Command{
	Use:   "swagger NAME VERSION",
	Short: "Print the OpenAPI descriptor of a published scoring service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The descriptor is served as plain OpenAPI JSON, not wrapped in the
		// response envelope, so it is fetched directly.
		req, err := http.NewRequest("GET", strings.TrimRight(serverURL, "/")+servicePath(args[0], args[1])+"/swagger.json", nil)
		if err != nil {
			return err
		}
		if authToken != "" {
			req.Header.Set("Authorization", "Bearer "+authToken)
		}
		resp, err := httpClient().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch descriptor: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		fmt.Println(string(raw))
		return nil
	},
}

func servicePath(name, version string) string {
	return "/api/v1/services/" + url.PathEscape(name) + "/" + url.PathEscape(version)
}

func init() {
	publishCmd.Flags().String("name", "", "Service name")
	publishCmd.Flags().String("version", "", "Service version (semver)")
	publishCmd.Flags().String("model-id", "", "Trained model identifier")
	publishCmd.Flags().String("description", "", "Human-readable description")
	_ = publishCmd.MarkFlagRequired("name")
	_ = publishCmd.MarkFlagRequired("version")
	_ = publishCmd.MarkFlagRequired("model-id")

	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("page-size", 20, "Services per page")
	listCmd.Flags().String("name", "", "Filter by service name")

	updateCmd.Flags().String("model-id", "", "Replacement model identifier")
	updateCmd.Flags().Int64("generation", 0, "Expected current generation of the service")
	_ = updateCmd.MarkFlagRequired("model-id")
	_ = updateCmd.MarkFlagRequired("generation")

	serviceCmd.AddCommand(publishCmd, listCmd, fetchCmd, swaggerCmd, updateCmd, retireCmd)
	rootCmd.AddCommand(serviceCmd)
}
