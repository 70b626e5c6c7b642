package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aiinpocket/n3n-core/config"
	"github.com/aiinpocket/n3n-core/model"
	"github.com/aiinpocket/n3n-core/optimizer"
	"github.com/aiinpocket/n3n-core/script"
)

type cli struct {
	cfg config.Config
}

func setupFlags(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("config-file", "", "Path to config file.")
	return viper.BindPFlags(cmd.PersistentFlags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	c.cfg, err = config.Load(configFile)
	return err
}

func (c *cli) validate(cmd *cobra.Command, args []string) error {
	def, err := readFlow(args[0])
	if err != nil {
		return err
	}

	nodeIDs := make(map[string]bool, len(def.Nodes))
	for _, n := range def.Nodes {
		nodeIDs[n.ID] = true
	}
	var dangling []string
	for _, e := range def.Edges {
		if !nodeIDs[e.Source] || !nodeIDs[e.Target] {
			dangling = append(dangling, e.ID)
		}
	}

	summary := optimizer.Summarize(def)
	report := map[string]any{
		"summary":       summary,
		"danglingEdges": dangling,
		"valid":         len(dangling) == 0,
	}
	printJSON(report)
	if len(dangling) > 0 {
		return fmt.Errorf("flow has %d dangling edges", len(dangling))
	}
	return nil
}

type suggestionsFile struct {
	FlowID        string             `json:"flowId"`
	Version       int                `json:"version"`
	SuggestionIDs []string           `json:"suggestionIds"`
	Suggestions   []model.Suggestion `json:"suggestions"`
}

func (c *cli) apply(cmd *cobra.Command, args []string) error {
	def, err := readFlow(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	var req suggestionsFile
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("invalid suggestions file: %w", err)
	}

	result, err := optimizer.ApplySuggestions(req.FlowID, req.Version, def, req.SuggestionIDs, req.Suggestions)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		data, err := json.MarshalIndent(result.UpdatedDefinition, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d of %d suggestions, wrote %s\n",
			result.AppliedCount, len(req.SuggestionIDs), out)
		return nil
	}
	printJSON(result)
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	code, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	inputJSON, _ := cmd.Flags().GetString("input")
	input := map[string]any{}
	if inputJSON != "" {
		if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
			return fmt.Errorf("invalid --input JSON: %w", err)
		}
	}
	timeoutMs, _ := cmd.Flags().GetInt64("timeout")
	if timeoutMs <= 0 {
		timeoutMs = c.cfg.ScriptDefaultTimeoutMs
	}

	runner := script.NewRunner(c.cfg.ScriptPoolSize)
	defer runner.Close()

	result := runner.Execute(string(code), input, timeoutMs)
	printJSON(result)
	if !result.Success {
		return fmt.Errorf("script failed: %s", result.ErrorType)
	}
	return nil
}

func printJSON(v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

func readFlow(path string) (model.FlowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FlowDefinition{}, err
	}
	var def model.FlowDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return model.FlowDefinition{}, fmt.Errorf("invalid flow definition: %w", err)
	}
	return def, nil
}

func main() {
	c := &cli{}

	root := &cobra.Command{
		Use:               "flowctl",
		Short:             "Inspect and rewrite workflow definitions",
		PersistentPreRunE: c.setupConfig,
	}

	validateCmd := &cobra.Command{
		Use:   "validate <flow.json>",
		Short: "Check a flow definition's structural integrity",
		Args:  cobra.ExactArgs(1),
		RunE:  c.validate,
	}

	applyCmd := &cobra.Command{
		Use:   "apply <flow.json> <suggestions.json>",
		Short: "Apply accepted optimization suggestions to a flow",
		Args:  cobra.ExactArgs(2),
		RunE:  c.apply,
	}
	applyCmd.Flags().String("out", "", "write the updated definition to this file")

	runCmd := &cobra.Command{
		Use:   "run <script.js>",
		Short: "Run a script through the sandbox",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	runCmd.Flags().String("input", "", "input data as JSON")
	runCmd.Flags().Int64("timeout", 0, "timeout in milliseconds")

	root.AddCommand(validateCmd, applyCmd, runCmd)

	if err := setupFlags(root); err != nil {
		log.Fatal(err)
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
