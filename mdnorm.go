/*package mdnorm computes the normalization grids which accompany binned
single-crystal neutron scattering data.*/
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/phil-mansfield/mdnorm/cmd"
	"github.com/phil-mansfield/mdnorm/io"
	"github.com/phil-mansfield/mdnorm/logging"
	"github.com/phil-mansfield/mdnorm/version"
)

var helpStrings = map[string]string{
	"norm": `The norm mode traces every detector through the output grid for every
experiment and every symmetry operation and writes the resulting
normalization table. Experiment files are named by the global config's
ExperimentFormat or, if it isn't set, listed on stdin.

Flags:
    -o file  Write the table to file instead of OutputFile or stdout.`,

	"config":            new(cmd.GlobalConfig).ExampleConfig(),
	"norm.config":       cmd.ModeNames["norm"].ExampleConfig(),
	"experiment.config": io.ExampleExperimentConfig,
}

var modeDescriptions = `My help modes are:
mdnorm help
mdnorm help norm
mdnorm help [ config | norm.config | experiment.config ]

My version mode is:
mdnorm version

My analysis modes are:
mdnorm norm [flags] ____.config [____.norm.config]`

func main() {
	args := os.Args
	if len(args) <= 1 {
		fmt.Fprintf(
			os.Stderr, "I was not supplied with a mode.\nFor help, type "+
				"'./mdnorm help'.\n",
		)
		os.Exit(1)
	}

	switch args[1] {
	case "help":
		switch len(args) - 2 {
		case 0:
			fmt.Println(modeDescriptions)
		case 1:
			text, ok := helpStrings[args[2]]
			if !ok {
				fmt.Printf("I don't recognize the help target '%s'\n", args[2])
			} else {
				fmt.Println(text)
			}
		default:
			fmt.Println("The help mode can only take a single argument.")
		}
		os.Exit(0)
	case "version":
		fmt.Printf("mdnorm version %s\n", version.SourceVersion)
		os.Exit(0)
	}

	mode, ok := cmd.ModeNames[args[1]]
	if !ok {
		fmt.Fprintf(
			os.Stderr, "You passed me the mode '%s', which I don't "+
				"recognize.\nFor help, type './mdnorm help'\n", args[1],
		)
		os.Exit(1)
	}

	flags := getFlags(args)
	gConfig, err := getGlobalConfig(args)
	if err != nil {
		exit(args[1], err)
	}
	gConfig.Init()

	var lines []string
	if gConfig.NeedsStdin() {
		if lines, err = stdinLines(); err != nil {
			exit(args[1], err)
		}
	}

	e, err := gConfig.Experiments(lines)
	if err != nil {
		exit(args[1], err)
	}

	config, _ := getConfig(args)
	if err = mode.ReadConfig(config); err != nil {
		exit(args[1], err)
	}

	out, err := mode.Run(flags, gConfig, e, lines)
	if err != nil {
		exit(args[1], err)
	}

	w := bufio.NewWriter(os.Stdout)
	for i := range out {
		fmt.Fprintln(w, out[i])
	}
	w.Flush()
	logging.Flush()
}

// exit reports an error and ends the program.
func exit(mode string, err error) {
	logging.Flush()
	fmt.Fprintf(os.Stderr, "Error running mode %s:\n%s\n", mode, err.Error())
	os.Exit(1)
}

// stdinLines reads stdin and splits it into lines.
func stdinLines() ([]string, error) {
	lines := []string{}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("Error reading stdin: %s.", err.Error())
	}
	return lines, nil
}

// getFlags returns the flag tokens from the command line arguments.
func getFlags(args []string) []string {
	return args[2 : len(args)-configNum(args)]
}

// getGlobalConfig reads the global config file named in the command line
// arguments, or by $MDNORM_GLOBAL_CONFIG.
func getGlobalConfig(args []string) (*cmd.GlobalConfig, error) {
	name := os.Getenv("MDNORM_GLOBAL_CONFIG")
	if name != "" {
		if configNum(args) > 1 {
			return nil, fmt.Errorf("$MDNORM_GLOBAL_CONFIG has been set, so " +
				"you may only pass a single config file as a parameter.")
		}
	} else {
		switch configNum(args) {
		case 0:
			return nil, fmt.Errorf("No config files provided in command " +
				"line arguments.")
		case 1:
			name = args[len(args)-1]
		case 2:
			name = args[len(args)-2]
		default:
			return nil, fmt.Errorf("Passed too many config files as arguments.")
		}
	}

	config := &cmd.GlobalConfig{}
	if err := config.ReadConfig(name); err != nil {
		return nil, err
	}
	return config, nil
}

// getConfig returns the name of the mode-specific config file from the
// command line arguments.
func getConfig(args []string) (string, bool) {
	global := os.Getenv("MDNORM_GLOBAL_CONFIG") != ""
	if global && configNum(args) == 1 {
		return args[len(args)-1], true
	} else if !global && configNum(args) == 2 {
		return args[len(args)-1], true
	}
	return "", false
}

// configNum returns the number of configuration files at the end of the
// argument list.
func configNum(args []string) int {
	num := 0
	for i := len(args) - 1; i >= 2; i-- {
		if !strings.HasSuffix(args[i], ".config") {
			break
		}
		num++
	}
	return num
}
