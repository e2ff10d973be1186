package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeClassify() string {
	return `Classifies an unused-variable lint finding: genuine dead code, a typo for a nearby identifier, a refactoring leftover, or intentionally kept.

USE WHEN:
- Deciding how to fix a no-unused-vars finding before editing
- Triaging a batch of linter findings into safe removals vs. renames
- Checking whether an "unused" variable is a misspelling of a real one
- Reviewing auto-fix suggestions before applying them

INTERPRETING RESULTS:
- GENUINE_UNUSED: no other references, safe to remove
- TYPO: a similarly-named identifier exists, suggested action is rename
- REFACTOR_LEFTOVER: file history shows recent refactoring activity
- INTENTIONAL_UNUSED: matches the intentional prefix convention (default _)
- UNKNOWN: signals conflict, inspect manually
- Confidence 0.0-1.0: higher means stronger evidence
- Confidence > 0.8: act on the suggestion without further checks
- Confidence 0.5-0.8: verify the suggested action first
- Confidence < 0.5: treat as a hint only
- from_oracle true: a language model override replaced the heuristic answer

METRICS RETURNED:
- Classification type, confidence, reasoning
- Suggested actions ranked by confidence (remove, rename, prefix, keep)
- Similar identifiers considered, with similarity scores
- Reference counts for the variable across the project`
}

func describeImpact() string {
	return `Traces which files are affected by changing a given file, ranked by propagation score.

USE WHEN:
- Estimating the blast radius of a fix before applying it
- Choosing which tests to run after editing a file
- Reviewing a change that touches a heavily-imported module
- Ordering a multi-file cleanup so dependents are visited after sources

INTERPRETING RESULTS:
- Score 1.0 is the changed file itself (excluded from the list)
- Direct importers score 0.9, files sharing identifiers 0.8
- Scores decay multiplicatively with each propagation hop
- Shared-variable bumps raise scores up to a 0.95 cap
- Score > 0.7: file almost certainly needs attention after the change
- Score 0.4-0.7: check the listed shared variables
- Score < 0.4: distant ripple, usually safe to ignore

METRICS RETURNED:
- Affected files sorted by score, highest first
- Shared variables per affected file
- Summary: total affected count, maximum score`
}

func describeSimilar() string {
	return `Finds identifiers declared elsewhere in the project whose names are similar to the given name.

USE WHEN:
- Checking whether an unused variable is a typo of a real identifier
- Finding the canonical spelling among near-duplicate names
- Locating naming drift (userData vs user_data vs userdata)
- Picking a rename target for a TYPO classification

INTERPRETING RESULTS:
- Similarity 0.0-1.0 from normalized edit distance with affix boosts
- 1.0: same name declared in another file
- > 0.9: case or underscore variant of the same words
- 0.7-0.9: likely typo or close variant
- Results below 0.7 are not returned
- Higher reference_count means the match is the established spelling

METRICS RETURNED:
- Up to 5 matches sorted by similarity, highest first
- Per-match: name, similarity score, project-wide reference count`
}

func describeHistory() string {
	return `Summarizes git commit history signals for one file: refactoring activity, change frequency, and authorship.

USE WHEN:
- Judging whether an unused variable is a leftover from recent refactoring
- Checking how volatile a file is before editing it
- Finding who last reworked a file before changing its semantics
- Explaining a REFACTOR_LEFTOVER classification

INTERPRETING RESULTS:
- refactor_probability 0.0-1.0: blends refactor-keyword commits with recency
- > 0.6: recent refactoring, leftovers are plausible
- change_frequency 0.0-1.0: higher means commits land close together
- author_line_counts shows blame-derived ownership of current lines
- Empty result means the file is outside a git repository or unborn

METRICS RETURNED:
- Recent commits: hash, author, date, message
- Refactor probability and change frequency scores
- Author line counts from blame`
}

func describeStats() string {
	return `Builds (or rebuilds) the project index and reports its statistics.

USE WHEN:
- Warming the index before a batch of classify/impact calls
- Checking how many files and identifiers the project contains
- Verifying the tracked-extension configuration picks up the right files
- Detecting staleness after edits (changed_since_build)

INTERPRETING RESULTS:
- total_files / total_identifiers: project scale
- graph_edges: import relationships discovered
- files_with_history > 0 means git signals are available
- changed_since_build > 0: results may be stale, pass rebuild=true
- used_parallel_scan and parallel_workers show how the build ran

METRICS RETURNED:
- File, identifier, import, export, and edge counts
- Files by language, files with git history, skipped files
- Build duration, worker count, files changed since the build`
}

func describeGraph() string {
	return `Projects the import graph between indexed files, optionally with PageRank hub ranking and import-cycle detection.

USE WHEN:
- Understanding which files anchor the project's structure
- Finding circular imports before a restructuring
- Choosing a safe order for multi-file changes
- Prioritizing review on heavily-depended-on files

INTERPRETING RESULTS:
- Edges point from importer to imported file
- High in_degree: many dependents, changes propagate widely
- pagerank ranks files by transitive dependency weight
- Cycles list strongly-connected import groups (problematic)
- density near 0 is normal for source trees; rising density means coupling

METRICS RETURNED:
- Nodes (files) with in-degree, edges with relation type
- With include_metrics: PageRank per file sorted high to low,
  import cycles, average degree, density, cycle count
- With mermaid: the graph rendered as a Mermaid diagram for direct
  embedding in markdown`
}
