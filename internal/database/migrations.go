package database

// ScanDateTime is TEXT so values round-trip exactly as entered and compare
// lexicographically, which orders ISO-8601 timestamps chronologically.
const schema = `
CREATE TABLE IF NOT EXISTS Artifacts (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    BusinessUnit TEXT NOT NULL,
    AlteraProduct TEXT,
    Rapid7App TEXT,
    CheckmarxProduct TEXT,
    MendProduct TEXT,
    MendProject TEXT,
    Owner TEXT,
    SCAScans INTEGER NOT NULL DEFAULT 0,
    SASTScans INTEGER NOT NULL DEFAULT 0,
    DASTScans INTEGER NOT NULL DEFAULT 0,
    RecentSCA TEXT,
    RecentSCAOK INTEGER NOT NULL DEFAULT 0,
    RecentSAST TEXT,
    RecentSASTOK INTEGER NOT NULL DEFAULT 0,
    RecentDAST TEXT,
    RecentDASTOK INTEGER NOT NULL DEFAULT 0,
    RecentLOC INTEGER NOT NULL DEFAULT 0,
    Deleted INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS Scans (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    ArtifactID INTEGER NOT NULL REFERENCES Artifacts(ID),
    ScanTool TEXT NOT NULL,
    ScanType TEXT NOT NULL,
    ScanDateTime TEXT NOT NULL,
    ScanRepeatCount INTEGER NOT NULL DEFAULT 1,
    Critical INTEGER NOT NULL DEFAULT 0,
    High INTEGER NOT NULL DEFAULT 0,
    Medium INTEGER NOT NULL DEFAULT 0,
    CriticalNP INTEGER NOT NULL DEFAULT 0,
    HighNP INTEGER NOT NULL DEFAULT 0,
    MediumNP INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_artifacts_business_unit ON Artifacts(BusinessUnit);
CREATE INDEX IF NOT EXISTS idx_scans_artifact ON Scans(ArtifactID);
CREATE INDEX IF NOT EXISTS idx_scans_triple ON Scans(ArtifactID, ScanTool, ScanType, ScanDateTime);
`
