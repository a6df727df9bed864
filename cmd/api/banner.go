package main

const inkwellBanner = `
 ___       _                 _ _
|_ _|_ __ | | ____      _____| | |
 | || '_ \| |/ /\ \ /\ / / _ \ | |
 | || | | |   <  \ V  V /  __/ | |
|___|_| |_|_|\_\  \_/\_/ \___|_|_|
   collaboratively hosted serials
`
