package globals

import (
	_ "embed"
	"strings"
)

const CLOUDFOX_USER_AGENT = "cloudfox-orgtree"
const CLOUDFOX_LOG_FILE_DIR_NAME = ".cloudfox"
const CLOUDFOX_BASE_DIRECTORY = "cloudfox-output"
const ORG_TREE_MODULE_NAME = "org-tree"

var CLOUDFOX_VERSION string = strings.TrimSpace(version)

//go:embed VERSION
var version string
