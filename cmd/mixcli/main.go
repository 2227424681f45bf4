// Command mixcli is a small inspection tool for the PrivateSend mixing
// engine: it reports the denomination catalog values and the collateral
// range, in the teacher's dcrlncli style.
package main

import (
	"fmt"
	"os"

	"github.com/dashpay/privatesend/denom"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "mixcli"
	app.Usage = "inspect a PrivateSend mixing engine"
	app.Commands = []cli.Command{
		denominationsCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var denominationsCommand = cli.Command{
	Name:  "denominations",
	Usage: "list the standard denomination ladder and the collateral range",
	Action: func(ctx *cli.Context) error {
		for _, d := range denom.All() {
			fmt.Println(d)
		}
		fmt.Printf("collateral range: %v - %v\n", denom.MinCollateral, denom.MaxCollateral)
		return nil
	},
}
