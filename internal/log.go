package internal

import (
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"

	"github.com/BishopFox/orgtree/globals"
	"github.com/aws/smithy-go/ptr"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/text"
	"github.com/kyokomi/emoji"
	"github.com/sirupsen/logrus"
)

var TxtLog = TxtLogger()

func init() {
	text.EnableColors()
}

// This function returns ~/.cloudfox.
// If the folder does not exist the function creates it.
func GetLogDirPath() *string {
	user, err := user.Current()
	home := os.TempDir()
	if err == nil {
		home = user.HomeDir
	}
	dir := filepath.Join(home, globals.CLOUDFOX_LOG_FILE_DIR_NAME)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0700)
		if err != nil {
			log.Fatalf("[-] Failed to read or create cloudfox directory")
		}
	}
	return ptr.String(dir)
}

// TxtLogger returns a logrus logger writing to ~/.cloudfox/cloudfox-error.log.
func TxtLogger() *logrus.Logger {
	txtLogger := logrus.New()
	txtFile, err := os.OpenFile(filepath.Join(ptr.ToString(GetLogDirPath()), "cloudfox-error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		txtLogger.Out = os.Stderr
		txtLogger.Warnf("Failed to open log file, logging to stderr: %v", err)
	} else {
		txtLogger.Out = txtFile
	}
	txtLogger.SetLevel(logrus.InfoLevel)

	return txtLogger
}

type Logger struct {
	version string
	txtLog  *logrus.Logger
}

func NewLogger() Logger {
	var logger = Logger{
		version: globals.CLOUDFOX_VERSION,
		txtLog:  TxtLog,
	}
	return logger
}

func (l *Logger) banner() string {
	return emoji.Sprintf(":fox:cloudfox %s :fox:", l.version)
}

func (l *Logger) InfoM(text string, module string) {
	var cyan = color.New(color.FgCyan).SprintFunc()
	fmt.Printf("[%s][%s] %s\n", cyan(l.banner()), cyan(module), text)
}

func (l *Logger) SuccessM(text string, module string) {
	var green = color.New(color.FgGreen).SprintFunc()
	fmt.Printf("[%s][%s] %s\n", green(l.banner()), green(module), text)
}

func (l *Logger) ErrorM(text string, module string) {
	var red = color.New(color.FgRed).SprintFunc()
	fmt.Printf("[%s][%s] %s\n", red(l.banner()), red(module), text)
	l.txtLog.Printf("[%s] %s", module, text)
}

func (l *Logger) FatalM(text string, module string) {
	var red = color.New(color.FgRed).SprintFunc()
	l.txtLog.Printf("[%s] %s", module, text)
	fmt.Printf("[%s][%s] %s\n", red(l.banner()), red(module), text)
	os.Exit(1)
}
