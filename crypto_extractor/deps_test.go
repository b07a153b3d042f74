package crypto_extractor

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test which import statements survive collection: crypto libraries, keyword
// matches, carried standard modules and commented internal imports.
func TestDeps_CollectImports(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "deps_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := loadTestFile(t, extractor, tempDir, "imports.py", `import base64
import os, sys
import json
import numpy as np
import socket as sock
import utils
from hashlib import (md5, sha256)
from os import path
from utils import helper
from .config import SECRET_KEY
from Crypto.Util import *
from . import settings
`)

	extractor.modules = moduleIndex{
		"utils":  {RelativePath: "utils.py"},
		"config": {RelativePath: "config.py"},
	}

	corpus := models.NewEncryptionCorpus("imports")
	extractor.collectImports(file, corpus)

	assert.Len(t, corpus.Imports, 10)

	assert.Contains(t, corpus.Imports, "import base64")
	assert.Contains(t, corpus.Imports, "import os")
	assert.Contains(t, corpus.Imports, "import sys")
	assert.Contains(t, corpus.Imports, "import socket as sock")
	assert.Contains(t, corpus.Imports, "from hashlib import md5")
	assert.Contains(t, corpus.Imports, "from hashlib import sha256")
	assert.Contains(t, corpus.Imports, "from os import path")
	assert.Contains(t, corpus.Imports, "from Crypto.Util import *")

	// from-imports of project modules stay, commented, with their relative
	// dots intact
	assert.Contains(t, corpus.Imports, "# from utils import helper  # internal project import, code inlined below")
	assert.Contains(t, corpus.Imports, "# from .config import SECRET_KEY  # internal project import, code inlined below")

	// a plain import of an internal module carries no crypto signal, its code
	// is inlined instead
	assert.NotContains(t, corpus.Imports, "import utils")
	assert.NotContains(t, corpus.Imports, "import json")
	assert.NotContains(t, corpus.Imports, "import numpy as np")
}

// Test single-hop dependency resolution from the primary files.
func TestDeps_ResolveDependencies(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "deps_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	mainFile := loadTestFile(t, extractor, tempDir, "resolve.py", `from zeta import T
from alpha import A
from .gamma import G
from cipher2 import C
import beta
import zeta.extra
import json
`)

	alphaFile := &ProjectFile{RelativePath: "alpha.py"}
	betaFile := &ProjectFile{RelativePath: "beta.py"}
	gammaFile := &ProjectFile{RelativePath: "gamma.py"}
	zetaFile := &ProjectFile{RelativePath: "zeta.py"}
	cipher2File := &ProjectFile{RelativePath: "cipher2.py"}

	extractor.modules = moduleIndex{
		"alpha":   alphaFile,
		"beta":    betaFile,
		"gamma":   gammaFile,
		"zeta":    zetaFile,
		"cipher2": cipher2File,
	}

	dependencies := extractor.resolveDependencies([]*ProjectFile{mainFile, cipher2File})

	// sorted by relative path, primaries excluded, `import zeta.extra` folded
	// into the zeta module it references
	require.Len(t, dependencies, 4)
	assert.Same(t, alphaFile, dependencies[0])
	assert.Same(t, betaFile, dependencies[1])
	assert.Same(t, gammaFile, dependencies[2])
	assert.Same(t, zetaFile, dependencies[3])
}

// Test the comment wrapper for internal imports.
func TestDeps_MarkInternalImport(t *testing.T) {
	marked := markInternalImport("from cipher import AESCipher")
	assert.Equal(t, "# from cipher import AESCipher  "+models.InternalImportNote, marked)
}

// Test dotted module name truncation.
func TestDeps_FirstSegment(t *testing.T) {
	assert.Equal(t, "Crypto", firstSegment("Crypto.Util"))
	assert.Equal(t, "os", firstSegment("os"))
	assert.Equal(t, "", firstSegment(""))
}
