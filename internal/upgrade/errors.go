package upgrade

import "github.com/starford/tmgr/internal/apperr"

const layer = "upgrade"

// Error kinds, one per state transition of the upgrade.
const (
	KindRepoCheckFail           apperr.Kind = "unable to fetch the tmgr GitHub repo, try again later"
	KindNoDownloadLink          apperr.Kind = "no download url for the tmgr executable found on GitHub"
	KindNoCurrentVersion        apperr.Kind = "unable to determine current version of tmgr"
	KindNoLatestVersion         apperr.Kind = "unable to determine latest version of tmgr from GitHub"
	KindResponseConversionFail  apperr.Kind = "unable to decode GitHub response"
	KindNoFileStructure         apperr.Kind = "unable to determine system's file structure"
	KindBinaryDownloadFail      apperr.Kind = "unable to fetch the latest tmgr executable from GitHub, try again later"
	KindCorruptedBinaryDownload apperr.Kind = "unable to read downloaded executable"
	KindCreateFileFail          apperr.Kind = "unable to create file in downloads folder"
	KindUnableToDeleteBinary    apperr.Kind = "unable to delete existing executable"
	KindUnableToMoveBinary      apperr.Kind = "unable to move downloaded executable to bin of current executable"
	KindNoExecutablePath        apperr.Kind = "unable to determine tmgr executable path"
	KindUnableToMigrateDatabase apperr.Kind = "unable to migrate database"
)
