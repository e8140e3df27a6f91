package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/geonovis/geonovis/internal/domain/session"
	"github.com/spf13/cobra"
)

var (
	sessionQuality int
	sessionStats   bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Encode or decode session tokens",
}

var sessionEncodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode JSON (file or stdin) into a session token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionEncode,
}

var sessionDecodeCmd = &cobra.Command{
	Use:   "decode [token]",
	Short: "Decode a session token (argument or stdin) back into JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionDecode,
}

func init() {
	sessionEncodeCmd.Flags().IntVarP(&sessionQuality, "quality", "q", session.DefaultQuality, "Brotli quality (0-11)")
	sessionEncodeCmd.Flags().BoolVar(&sessionStats, "stats", false, "Print size breakdown to stderr")

	sessionCmd.AddCommand(sessionEncodeCmd)
	sessionCmd.AddCommand(sessionDecodeCmd)
}

func runSessionEncode(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("input is not JSON: %w", err)
	}
	enc, err := session.Encode(v, sessionQuality)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), enc.Content)
	if sessionStats {
		fmt.Fprint(os.Stderr, formatStats(enc.Stats))
	}
	return nil
}

func runSessionDecode(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		token = string(data)
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("no token given")
	}

	v, err := session.Decode(token)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput returns the named file, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
