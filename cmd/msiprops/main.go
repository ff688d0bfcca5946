// cmd/msiprops/main.go

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/hush/pkg/config"
	"github.com/windowsadmins/hush/pkg/logging"
	"github.com/windowsadmins/hush/pkg/msidb"
	"github.com/windowsadmins/hush/pkg/version"
)

func main() {
	codeOnly := pflag.Bool("product-code", false, "Print only the ProductCode property.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		os.Exit(0)
	}

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: msiprops [--product-code] <package.msi>\n")
		os.Exit(1)
	}
	path := pflag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseLogger()

	if *codeOnly {
		code, err := msidb.ProductCode(path)
		if err != nil {
			logging.Error("Cannot read product code", "path", path, "error", err)
			os.Exit(1)
		}
		fmt.Println(code)
		os.Exit(0)
	}

	props, err := msidb.ReadProperties(path)
	if err != nil {
		logging.Error("Cannot read MSI properties", "path", path, "error", err)
		os.Exit(1)
	}
	out, err := yaml.Marshal(props)
	if err != nil {
		logging.Error("Cannot render MSI properties", "path", path, "error", err)
		os.Exit(1)
	}
	fmt.Print(string(out))
}
