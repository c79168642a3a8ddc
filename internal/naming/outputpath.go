package naming

import (
	"path/filepath"
	"strings"
)

// DeriveOutputPath strips the extension from the base name of inputPath,
// appends "."+targetExt and joins the result with outputDir. The input
// directory is ignored; only the base name survives.
//
//	/videos/Clip.MOV, /gifs, gif  ->  /gifs/Clip.gif
func DeriveOutputPath(inputPath, outputDir, targetExt string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+"."+strings.TrimPrefix(targetExt, "."))
}
