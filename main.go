// Command tablestore serves SQLite databases over JSON and SOAP and manages them from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/joe-ervin05/tablestore/api"
	"github.com/joe-ervin05/tablestore/config"
	"github.com/joe-ervin05/tablestore/daos"
	"github.com/joe-ervin05/tablestore/soap"
	"github.com/joe-ervin05/tablestore/tools"
)

// CLI defines the command-line interface.
var CLI struct {
	LogLevel string `name:"log-level" help:"Override LOG_LEVEL (debug, info, warn, error)"`

	Serve ServeCmd `cmd:"" default:"1" help:"Start the JSON and SOAP server"`
	DB    DBGroup  `cmd:"" name:"db" help:"Manage databases directly on disk"`
	Call  CallCmd  `cmd:"" help:"Post an action to a running server"`
}

// DBGroup contains catalog operations that bypass the server.
type DBGroup struct {
	Create  DBCreateCmd  `cmd:"" help:"Create an empty database"`
	Delete  DBDeleteCmd  `cmd:"" help:"Delete a database file"`
	Backup  DBBackupCmd  `cmd:"" help:"Snapshot a database into the backup directory"`
	Restore DBRestoreCmd `cmd:"" help:"Overwrite a database from a backup artifact"`
	Tables  DBTablesCmd  `cmd:"" help:"List the tables of a database with their columns"`
	Backups DBBackupsCmd `cmd:"" help:"List the backups of a database"`
}

func logStartupInfo() {
	fmt.Println("=== tablestore ===")
	fmt.Printf("Port:            %s\n", config.Cfg.Port)
	fmt.Printf("Data dir:        %s\n", config.Cfg.DataDir)
	fmt.Printf("Backup dir:      %s (compression: %s)\n", config.Cfg.BackupDir, config.Cfg.BackupCompression)
	fmt.Printf("Driver:          %s\n", config.Cfg.Driver)
	fmt.Printf("Request timeout: %ds\n", config.Cfg.RequestTimeout)

	if len(config.Cfg.CORSOrigins) == 0 {
		fmt.Println("[INFO] CORS disabled (no origins configured)")
	} else {
		fmt.Printf("[OK]   CORS origins: %v\n", config.Cfg.CORSOrigins)
	}
	fmt.Println()
}

// ServeCmd runs the HTTP server until SIGINT or SIGTERM.
type ServeCmd struct{}

func (cmd *ServeCmd) Run() error {
	logStartupInfo()

	app := http.NewServeMux()

	api.Run(app)
	soap.Run(app)

	// panic recovery -> logging -> timeout -> cors -> body limit -> handler
	handler := tools.PanicRecoveryMiddleware(
		tools.LoggingMiddleware(
			tools.TimeoutMiddleware(
				tools.CORSMiddleware(
					tools.MaxBodyMiddleware(app)))))

	server := &http.Server{
		Addr:    config.Cfg.Port,
		Handler: handler,
	}

	go func() {
		fmt.Printf("Listening on %s\n", config.Cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down server...")

	// Give outstanding requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	fmt.Println("Server stopped")
	return nil
}

func openCatalog() (*daos.Catalog, error) {
	return daos.NewCatalog(daos.OptionsFromConfig(config.Cfg))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DBCreateCmd creates a database.
type DBCreateCmd struct {
	Name string `arg:"" help:"Database name"`
}

func (cmd *DBCreateCmd) Run() error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.CreateDatabase(context.Background(), cmd.Name); err != nil {
		return err
	}
	fmt.Printf("Database '%s' created.\n", cat.Name())
	return nil
}

// DBDeleteCmd deletes a database.
type DBDeleteCmd struct {
	Name string `arg:"" help:"Database name"`
}

func (cmd *DBDeleteCmd) Run() error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.DeleteDatabase(context.Background(), cmd.Name); err != nil {
		return err
	}
	fmt.Printf("Database '%s' deleted.\n", cmd.Name)
	return nil
}

// DBBackupCmd backs up a database.
type DBBackupCmd struct {
	Name     string `arg:"" help:"Database name"`
	Compress string `help:"Override BACKUP_COMPRESSION for this backup (none or xz)"`
}

func (cmd *DBBackupCmd) Run() error {
	opts := daos.OptionsFromConfig(config.Cfg)
	if cmd.Compress != "" {
		compression, ok := config.ParseCompression(cmd.Compress)
		if !ok {
			return fmt.Errorf("unknown compression %q, want none or xz", cmd.Compress)
		}
		opts.Compression = compression
	}

	cat, err := daos.NewCatalog(opts)
	if err != nil {
		return err
	}
	defer cat.Close()

	info, err := cat.BackupDatabase(context.Background(), cmd.Name)
	if err != nil {
		return err
	}
	return printJSON(info)
}

// DBRestoreCmd restores a database from a backup.
type DBRestoreCmd struct {
	Name   string `arg:"" help:"Database name"`
	Backup string `arg:"" help:"Backup file name inside the backup directory"`
}

func (cmd *DBRestoreCmd) Run() error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.RestoreDatabase(context.Background(), cmd.Name, cmd.Backup); err != nil {
		return err
	}
	fmt.Printf("Database '%s' restored from '%s'.\n", cat.Name(), cmd.Backup)
	return nil
}

// DBTablesCmd lists the tables of a database.
type DBTablesCmd struct {
	Name string `arg:"" help:"Database name"`
}

func (cmd *DBTablesCmd) Run() error {
	ctx := context.Background()

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.SelectDatabase(ctx, cmd.Name); err != nil {
		return err
	}

	tables, err := cat.ListTables(ctx)
	if err != nil {
		return err
	}
	return printJSON(tables)
}

// DBBackupsCmd lists the backups of a database.
type DBBackupsCmd struct {
	Name string `arg:"" help:"Database name"`
}

func (cmd *DBBackupsCmd) Run() error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	backups, err := cat.ListBackups(cmd.Name)
	if err != nil {
		return err
	}
	return printJSON(backups)
}

// CallCmd posts one action to the JSON endpoint of a running server.
type CallCmd struct {
	Action  string `arg:"" help:"Action name, e.g. select_records"`
	DB      string `name:"db" short:"d" help:"Database name"`
	Payload string `short:"p" help:"Payload as a JSON object" default:"{}"`
	URL     string `name:"url" help:"API endpoint" default:"http://localhost:8080/api"`
}

func (cmd *CallCmd) Run() error {
	var payload map[string]any
	if err := json.Unmarshal([]byte(cmd.Payload), &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	res, envelope, err := api.Call(cmd.URL, api.Request{Action: cmd.Action, DbName: cmd.DB, Payload: payload})
	if err != nil {
		return err
	}

	if err := printJSON(envelope); err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("server answered %s", res.Status)
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tablestore"),
		kong.Description("SQLite table store with JSON and SOAP endpoints"),
		kong.UsageOnError(),
	)

	if CLI.LogLevel != "" {
		tools.SetLevel(CLI.LogLevel)
	}

	ctx.FatalIfErrorf(ctx.Run())
}
