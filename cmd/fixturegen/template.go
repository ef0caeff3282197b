package main

const configTemplate = `# League Fixture Configuration
# ============================
# This file describes the divisions, teams and grounds of a league season.
# "fixturegen fixtures generate" turns it into a round-by-round fixture list.

# Divisions and their teams. Every team plays every other team in its
# division once (meetings: 1) or home and away (meetings: 2). A division
# with an odd number of teams gives one team a bye each round.
#
# Teams may be plain names or mappings:
#   - name: Rovers
#     venue: Riverside           # home ground, see venues below
#     unavailable_rounds: [3]    # 1-based rounds the team cannot play
#     unavailable_dates: ["2026-10-17"]   # needs a calendar
divisions:
  - name: Premier
    meetings: 2
    teams:
      - name: Rovers
        venue: Riverside
      - name: United
        venue: Hill Lane
      - Athletic
      - Wanderers
      - Albion
      - City
  - name: Championship
    meetings: 1
    teams:
      - name: Rovers Reserves
        venue: Riverside
      - Town
      - Harriers
      - Villa
      - Rangers

# Season length in rounds. Leave at 0 to use the fewest rounds that fit the
# longest division. A division may also set its own "rounds".
rounds: 0

# When true, divisions are scheduled together so that grounds shared across
# divisions never host more than their capacity in one round, and no round
# has more than max_matches_per_round matches (0 = no limit).
shared_resources_across_divisions: true
max_matches_per_round: 0

# Grounds shared by several teams. Capacity is the number of home matches
# the ground can host in one round.
venues:
  - name: Riverside
    capacity: 1
  - name: Hill Lane
    capacity: 1
    unavailable_rounds: [1]

# Optional calendar: round N is played on the Nth match date.
calendar:
  start_date: "2026-09-05"
  end_date: "2027-04-24"

  # Match days of the week. Defaults to the weekday of start_date.
  weekdays: [saturday]

  # Occurrences of the weekday within a month to skip: 1 = first,
  # 2 = second, -1 = last.
  skip_occurrences: []

  # Blackout dates are full days with no matches.
  blackout_dates:
    - date: "2026-12-26"
      reason: "Boxing Day"
    - start_date: "2026-12-19"
      end_date: "2027-01-02"
      reason: "Winter break"

# Search options. Each can be overridden with a FIXTURES_* environment
# variable (for example FIXTURES_SEED=7), optionally set in a .env file, and
# the first three with command line flags.
run:
  seed: 1
  time_limit_seconds: 30
  search_workers: 4
  node_limit: 200000
  move_limit: 20000

  # Relative weight of each guideline. 0 ignores it.
  weight_home_away_balance: 1
  weight_bye_distribution: 1
  weight_repeat_streak: 1
`
